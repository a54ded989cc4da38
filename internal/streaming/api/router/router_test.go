package router

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"video_stream_service/cmd/media_service/docs"
	"video_stream_service/internal/streaming/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routeParam = regexp.MustCompile(`:(\w+)`)

// registered GET/POST routes as "METHOD /path/{param}", swagger UI and websocket excluded
func registeredRoutes(app *fiber.App) map[string]bool {
	out := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		if r.Method != fiber.MethodGet && r.Method != fiber.MethodPost {
			continue
		}
		if strings.HasPrefix(r.Path, "/swagger") || strings.HasSuffix(r.Path, "/ws") {
			continue
		}
		out[r.Method+" "+routeParam.ReplaceAllString(r.Path, "{$1}")] = true
	}
	return out
}

func documentedRoutes(t *testing.T) map[string]bool {
	t.Helper()
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	out := map[string]bool{}
	for path, methods := range doc.Paths {
		for method := range methods {
			out[strings.ToUpper(method)+" "+path] = true
		}
	}
	return out
}

func TestSwaggerDocMatchesRoutes(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, handlers.NewVideoHandler(nil, nil, 0), handlers.NewJobHandler(nil))

	registered := registeredRoutes(app)
	require.NotEmpty(t, registered)
	assert.Equal(t, registered, documentedRoutes(t))
}

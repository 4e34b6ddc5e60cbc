package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"track-designer/internal/designer/catalog"
	"track-designer/internal/designer/repository"
	"track-designer/internal/designer/validate"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "designs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	require.NoError(t, repo.Init(context.Background(), "../../../migrations/001_init_designs.sql"))

	table := validate.NewTable([]validate.Rule{
		{Key1: "05", Key2: "05", AllowsSameOrientation: false},
		{Key1: "05", Key2: "L", AllowsSameOrientation: true},
		{Key1: "05", Key2: "C", AllowsSameOrientation: true},
	})
	handler := New(repo, catalog.Default(), validate.New(table))

	app := fiber.New()
	app.Get("/catalog", handler.GetCatalog)
	app.Post("/designs", handler.CreateDesign)
	app.Get("/designs", handler.ListDesigns)
	app.Get("/designs/:id", handler.GetDesign)
	app.Put("/designs/:id", handler.PutDesign)
	app.Delete("/designs/:id", handler.DeleteDesign)
	app.Post("/designs/:id/sequences", handler.CreateSequence)
	app.Delete("/designs/:id/sequences/:name", handler.DeleteSequence)
	app.Post("/designs/:id/sequences/:name/shapes", handler.InsertShape)
	app.Post("/designs/:id/sequences/:name/link", handler.SetLink)
	app.Put("/designs/:id/sequences/:name/anchor", handler.SetAnchor)
	app.Delete("/designs/:id/sequences/:name/anchor", handler.ClearAnchor)
	app.Patch("/designs/:id/shapes/:shapeId", handler.PatchShape)
	app.Delete("/designs/:id/shapes/:shapeId", handler.RemoveShape)
	app.Get("/designs/:id/geometry", handler.GetGeometry)
	app.Get("/designs/:id/svg", handler.GetSVG)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	} else {
		decoded = map[string]any{"raw": string(raw), "content_type": resp.Header.Get("Content-Type")}
	}
	return resp.StatusCode, decoded
}

func createDesign(t *testing.T, app *fiber.App) string {
	t.Helper()

	status, body := do(t, app, http.MethodPost, "/designs", fiber.Map{"name": "track"})
	require.Equal(t, 201, status)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	status, _ = do(t, app, http.MethodPost, "/designs/"+id+"/sequences", fiber.Map{"name": "main"})
	require.Equal(t, 201, status)
	return id
}

func insertShape(t *testing.T, app *fiber.App, id, seq, key string) string {
	t.Helper()

	status, body := do(t, app, http.MethodPost, "/designs/"+id+"/sequences/"+seq+"/shapes", fiber.Map{"key": key})
	require.Equal(t, 201, status, "insert %s: %v", key, body)
	shapeID, _ := body["shape"].(string)
	require.NotEmpty(t, shapeID)
	return shapeID
}

func TestDesignLifecycle(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	insertShape(t, app, id, "main", "05")
	insertShape(t, app, id, "main", "L")

	status, body := do(t, app, http.MethodGet, "/designs/"+id, nil)
	require.Equal(t, 200, status)
	sequences := body["sequences"].([]any)
	require.Len(t, sequences, 1)

	status, body = do(t, app, http.MethodGet, "/designs", nil)
	require.Equal(t, 200, status)
	require.Len(t, body["designs"], 1)

	status, _ = do(t, app, http.MethodDelete, "/designs/"+id, nil)
	require.Equal(t, 200, status)

	status, _ = do(t, app, http.MethodGet, "/designs/"+id, nil)
	require.Equal(t, 404, status)
}

// Вставка после терминальной детали отклоняется типизированным отказом.
func TestInsertAfterTerminalRejected(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	insertShape(t, app, id, "main", "L")
	insertShape(t, app, id, "main", "C")

	status, body := do(t, app, http.MethodPost, "/designs/"+id+"/sequences/main/shapes", fiber.Map{"key": "L"})
	require.Equal(t, 422, status)
	validation := body["validation"].(map[string]any)
	assert.Equal(t, "terminal_violation", validation["code"])
}

// PUT принимает документ из внешнего редактора — деталь после
// терминальной отклоняется там же, где и битые якоря.
func TestPutDesignTerminalNotLast(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	seg := func(sid string) fiber.Map {
		return fiber.Map{"id": sid, "type": "segment", "key": "L", "orientation": 1, "length": 19.0, "width": 5.0}
	}
	doc := fiber.Map{
		"name": "track",
		"sequences": []fiber.Map{{
			"name": "main",
			"shapes": []fiber.Map{
				seg("s1"),
				{"id": "c1", "type": "closer", "key": "C", "orientation": 1, "diameter": 40.0},
				seg("s2"),
			},
		}},
	}

	status, body := do(t, app, http.MethodPut, "/designs/"+id, doc)
	require.Equal(t, 400, status)
	assert.Contains(t, body["error"], "terminal shape")
}

func TestInsertUnknownKey(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	status, _ := do(t, app, http.MethodPost, "/designs/"+id+"/sequences/main/shapes", fiber.Map{"key": "99"})
	assert.Equal(t, 400, status)
}

func TestLinkFlow(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	anchorID := insertShape(t, app, id, "main", "05")

	status, _ := do(t, app, http.MethodPost, "/designs/"+id+"/sequences", fiber.Map{"name": "branch"})
	require.Equal(t, 201, status)
	branchID := insertShape(t, app, id, "branch", "05")

	// обе детали с ориентацией +1, пара 05–05 не в исключениях
	status, body := do(t, app, http.MethodPost, "/designs/"+id+"/sequences/branch/link",
		fiber.Map{"shape_id": anchorID})
	require.Equal(t, 422, status)
	validation := body["validation"].(map[string]any)
	assert.Equal(t, "orientation_conflict", validation["code"])

	// меняем ориентацию первой детали ветки — связь проходит
	status, _ = do(t, app, http.MethodPatch, "/designs/"+id+"/shapes/"+branchID,
		fiber.Map{"orientation": -1})
	require.Equal(t, 200, status)

	status, body = do(t, app, http.MethodPost, "/designs/"+id+"/sequences/branch/link",
		fiber.Map{"shape_id": anchorID})
	require.Equal(t, 200, status, "%v", body)
	require.NotEmpty(t, body["joints"])

	// якорную деталь теперь нельзя удалить
	status, _ = do(t, app, http.MethodDelete, "/designs/"+id+"/shapes/"+anchorID, nil)
	assert.Equal(t, 409, status)

	// и последовательность main тоже
	status, _ = do(t, app, http.MethodDelete, "/designs/"+id+"/sequences/main", nil)
	assert.Equal(t, 409, status)
}

func TestGeometryEndpoint(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)

	insertShape(t, app, id, "main", "05")
	insertShape(t, app, id, "main", "L")

	status, body := do(t, app, http.MethodGet, "/designs/"+id+"/geometry?scale=2", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, 2.0, body["scale"])
	assert.Len(t, body["shapes"], 2)
	require.Contains(t, body, "bounds")
	require.Contains(t, body, "terminals")

	status, _ = do(t, app, http.MethodGet, "/designs/"+id+"/geometry?scale=0", nil)
	assert.Equal(t, 400, status)
}

func TestSVGEndpoint(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)
	insertShape(t, app, id, "main", "L")

	status, body := do(t, app, http.MethodGet, "/designs/"+id+"/svg", nil)
	require.Equal(t, 200, status)
	assert.Contains(t, body["content_type"], "image/svg+xml")
	assert.Contains(t, body["raw"], "<svg")
}

func TestCatalogEndpoint(t *testing.T) {
	app := testApp(t)
	status, body := do(t, app, http.MethodGet, "/catalog", nil)
	require.Equal(t, 200, status)
	assert.NotEmpty(t, body["shapes"])
}

func TestSetAnchorAndClear(t *testing.T) {
	app := testApp(t)
	id := createDesign(t, app)
	insertShape(t, app, id, "main", "L")

	status, body := do(t, app, http.MethodPut, "/designs/"+id+"/sequences/main/anchor",
		fiber.Map{"x": 10, "y": 20, "angle": 90})
	require.Equal(t, 200, status)
	joints := body["joints"].([]any)
	first := joints[0].(map[string]any)
	assert.Equal(t, 10.0, first["x"])
	assert.Equal(t, 20.0, first["y"])
	assert.Equal(t, 90.0, first["angle"])

	status, _ = do(t, app, http.MethodDelete, "/designs/"+id+"/sequences/main/anchor", nil)
	assert.Equal(t, 200, status)
}

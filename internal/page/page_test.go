package page

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/game"
	"scoundrel/internal/session"
)

func TestIndexPage_ListsRuns(t *testing.T) {
	var buf bytes.Buffer
	runs := []session.View{
		{ID: "a1", Status: game.StatusPlaying, Floor: 1, FloorCount: 3, Life: 17, MaxLife: 20},
		{ID: "b2", Status: game.StatusDefeat, Floor: 2, FloorCount: 3, Life: 0, MaxLife: 20},
	}
	require.NoError(t, IndexPage(runs).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `<a href="/runs/a1">a1</a> playing, floor 1/3, life 17/20`)
	assert.Contains(t, html, `<a href="/runs/b2">b2</a>`)
	assert.Contains(t, html, `/static/css/scoundrel.css`)
}

func TestRunPage_EscapesAndEmbedsView(t *testing.T) {
	var buf bytes.Buffer
	v := session.View{ID: "r1", Status: game.StatusPlaying, FloorName: "<b>Crypt</b>"}
	require.NoError(t, RunPage(v).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `&lt;b&gt;Crypt&lt;/b&gt;`)
	assert.NotContains(t, html, `<b>Crypt</b>`)
	assert.Contains(t, html, `id="initial-view"`)
	assert.Contains(t, html, `"id":"r1"`)
	assert.Contains(t, html, `data-run="r1"`)
}

func TestNotFoundPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NotFoundPage().Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "run not found")
}

package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func validGameRequest() GameRequest {
	return GameRequest{
		Title:       "Azul",
		Year:        intPtr(2017),
		Designer:    "Michael Kiesling",
		Artist:      "Philippe Guérin",
		Publisher:   "Plan B Games",
		Rating:      intPtr(9),
		Category:    "Abstract",
		Description: "Tile drafting.",
		Image:       "https://example.com/azul.png",
	}
}

func TestGameRequest_ValidateCreate_Valid(t *testing.T) {
	req := validGameRequest()
	assert.Empty(t, req.ValidateCreate())
}

func TestGameRequest_ValidateCreate_Rejects(t *testing.T) {
	cases := map[string]struct {
		mutate func(r *GameRequest)
		field  string
		msg    string
	}{
		"missing title":    {func(r *GameRequest) { r.Title = " " }, "title", "Title is required"},
		"long designer":    {func(r *GameRequest) { r.Designer = strings.Repeat("x", 71) }, "designer", "Designer name too long"},
		"missing year":     {func(r *GameRequest) { r.Year = nil }, "year", "Year is required"},
		"old year":         {func(r *GameRequest) { r.Year = intPtr(1974) }, "year", "Year must be at least 1975"},
		"future year":      {func(r *GameRequest) { r.Year = intPtr(2051) }, "year", "Year cannot be more than 2050"},
		"low rating":       {func(r *GameRequest) { r.Rating = intPtr(0) }, "rating", "Rating must be at least 1"},
		"high rating":      {func(r *GameRequest) { r.Rating = intPtr(11) }, "rating", "Rating cannot be more than 10"},
		"long description": {func(r *GameRequest) { r.Description = strings.Repeat("d", 101) }, "description", "Description too long"},
		"bad image":        {func(r *GameRequest) { r.Image = "ftp://example.com/x.png" }, "image", `URL must start with "http://" or "https://"`},
		"missing image":    {func(r *GameRequest) { r.Image = "" }, "image", "Image URL is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validGameRequest()
			tc.mutate(&req)
			errs := req.ValidateCreate()
			assert.Equal(t, tc.msg, errs[tc.field])
		})
	}
}

func TestGameRequest_ValidateUpdate_NoUpperYearBound(t *testing.T) {
	req := validGameRequest()
	req.Year = intPtr(2100)
	assert.Empty(t, req.ValidateUpdate())
	assert.Contains(t, req.ValidateCreate(), "year")
}

func TestGameRequest_Apply(t *testing.T) {
	req := validGameRequest()
	req.Title = "  Azul  "
	var g Game
	req.Apply(&g)
	assert.Equal(t, "Azul", g.Title)
	assert.Equal(t, 2017, g.Year)
	assert.Equal(t, 9, g.Rating)
}

package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsForQuery(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsForQuery(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsForQuery(t, "limit=5&offset=10")
	if p.Limit != 5 || p.Offset != 10 {
		t.Errorf("expected limit=5 offset=10, got %+v", p)
	}
}

func TestFromContext_ClampsMax(t *testing.T) {
	p := paramsForQuery(t, "limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected clamp to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := paramsForQuery(t, "offset=-3")
	if p.Offset != 0 {
		t.Errorf("expected offset 0 for negative input, got %d", p.Offset)
	}
}

func TestParams_Navigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}

	if !p.HasNext(100) {
		t.Error("expected HasNext for total 100")
	}
	if p.HasNext(50) {
		t.Error("expected no next page for total 50")
	}
	if !p.HasPrevious() {
		t.Error("expected HasPrevious for offset 40")
	}
	if p.NextOffset() != 60 {
		t.Errorf("expected next offset 60, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 20 {
		t.Errorf("expected previous offset 20, got %d", p.PreviousOffset())
	}

	first := Params{Limit: 20, Offset: 10}
	if first.PreviousOffset() != 0 {
		t.Errorf("expected previous offset floored at 0, got %d", first.PreviousOffset())
	}
}

func TestParams_SQL(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 40" {
		t.Errorf("unexpected SQL clause: %q", got)
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]int{1, 2, 3}, 10, 3, 0)
	if !r.HasMore {
		t.Error("expected HasMore for partial page")
	}

	r = NewResponse([]int{1}, 1, 20, 0)
	if r.HasMore {
		t.Error("expected no more pages")
	}
}

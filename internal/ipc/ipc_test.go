package ipc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kitsunet/livepaper/internal/engine"
)

type fakeController struct {
	commands []engine.Command
	report   engine.StatusReport
}

func (f *fakeController) Enqueue(cmd engine.Command) { f.commands = append(f.commands, cmd) }
func (f *fakeController) Status() (engine.StatusReport, error) {
	return f.report, nil
}

func request(t *testing.T, ctrl Controller, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	RegisterRoutes(e, ctrl)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatusRoute(t *testing.T) {
	ctrl := &fakeController{report: engine.StatusReport{
		Quality: "high",
		Paused:  true,
		Outputs: []engine.OutputStatus{{ID: "DP-1", Video: "/a.mp4", State: "paused"}},
	}}
	rec := request(t, ctrl, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var report engine.StatusReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if report.Quality != "high" || !report.Paused || len(report.Outputs) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestSetRoute(t *testing.T) {
	ctrl := &fakeController{}
	rec := request(t, ctrl, http.MethodPost, "/set", `{"monitor":"DP-1","video":"/new.mp4"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(ctrl.commands) != 1 {
		t.Fatalf("commands = %+v", ctrl.commands)
	}
	cmd := ctrl.commands[0]
	if cmd.Type != engine.CommandSet || cmd.Output != "DP-1" || cmd.Path != "/new.mp4" {
		t.Errorf("command = %+v", cmd)
	}
}

func TestSetRouteRejectsIncompleteBody(t *testing.T) {
	ctrl := &fakeController{}
	rec := request(t, ctrl, http.MethodPost, "/set", `{"monitor":"DP-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(ctrl.commands) != 0 {
		t.Errorf("invalid request still enqueued %+v", ctrl.commands)
	}
}

func TestUnsetReloadStopRoutes(t *testing.T) {
	ctrl := &fakeController{}
	if rec := request(t, ctrl, http.MethodPost, "/unset", `{"monitor":"DP-1"}`); rec.Code != http.StatusOK {
		t.Errorf("unset status = %d", rec.Code)
	}
	if rec := request(t, ctrl, http.MethodPost, "/reload", ""); rec.Code != http.StatusOK {
		t.Errorf("reload status = %d", rec.Code)
	}
	if rec := request(t, ctrl, http.MethodPost, "/stop", ""); rec.Code != http.StatusOK {
		t.Errorf("stop status = %d", rec.Code)
	}

	want := []engine.CommandType{engine.CommandUnset, engine.CommandReload, engine.CommandStop}
	if len(ctrl.commands) != len(want) {
		t.Fatalf("commands = %+v", ctrl.commands)
	}
	for i, cmd := range ctrl.commands {
		if cmd.Type != want[i] {
			t.Errorf("command %d = %v, want %v", i, cmd.Type, want[i])
		}
	}
}

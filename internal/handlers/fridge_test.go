package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
	"smart_fridge/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
)

func authed(method, path string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return withHeader(req, authHeader("valid"))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestGetStatus(t *testing.T) {
	snap := service.Snapshot{
		Sample:   models.SensorSample{TemperatureC: 9.5, EnergyWatts: 150, Valid: true},
		Display:  models.DisplayLines{Line1: "1 T:9.5C D:CLOSED E:150W", Line2: "TEMPERATURE TOO HIGH"},
		LogLevel: "INFO",
		Level:    1,
		Ticks:    7,
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Monitoring: newMockMonitoring(snap)}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/v1/status", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got service.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Ticks != 7 || got.Display.Line2 != "TEMPERATURE TOO HIGH" || got.Sample.TemperatureC != 9.5 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status=%d, want 401", w.Code)
	}
}

func TestGetStatus_Error(t *testing.T) {
	mon := newMockMonitoring(service.Snapshot{})
	mon.statusErr = errors.New("boom")
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/v1/status", ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}

func TestGetDisplay(t *testing.T) {
	cases := []struct {
		name    string
		rec     repository.DisplayRecord
		err     error
		want    int
		wantTxt string
	}{
		{name: "nothing rendered", want: http.StatusNotFound, wantTxt: errNoDisplay},
		{
			name:    "persisted row",
			rec:     repository.DisplayRecord{ID: 1, Lines: models.DisplayLines{Line1: "SMART FRIDGE", Line2: "Starting..."}, LogLevel: "INFO"},
			want:    http.StatusOK,
			wantTxt: "Starting...",
		},
		{name: "storage error", err: errors.New("disk I/O error"), want: http.StatusInternalServerError, wantTxt: errGetDisplay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mon := newMockMonitoring(service.Snapshot{})
			mon.display, mon.displayErr = tc.rec, tc.err
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Monitoring: mon})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, authed(http.MethodGet, "/api/v1/display", ""))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d", w.Code, tc.want)
			}
			if !strings.Contains(w.Body.String(), tc.wantTxt) {
				t.Fatalf("body %s does not contain %q", w.Body.String(), tc.wantTxt)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		ctrlErr   error
		want      int
		wantLevel []logger.Level
	}{
		{name: "valid", body: `{"level":2}`, want: http.StatusOK, wantLevel: []logger.Level{logger.WarningLevel}},
		{name: "zero is a level", body: `{"level":0}`, want: http.StatusOK, wantLevel: []logger.Level{logger.DebugLevel}},
		{name: "missing level", body: `{}`, want: http.StatusBadRequest},
		{name: "not a number", body: `{"level":"debug"}`, want: http.StatusBadRequest},
		{name: "above range", body: `{"level":4}`, want: http.StatusBadRequest},
		{name: "negative", body: `{"level":-1}`, want: http.StatusBadRequest},
		{name: "wraps int8", body: `{"level":256}`, want: http.StatusBadRequest},
		{
			name:      "loop rejects",
			body:      `{"level":1}`,
			ctrlErr:   fmt.Errorf("%w: 1", service.ErrInvalidLevel),
			want:      http.StatusBadRequest,
			wantLevel: []logger.Level{logger.InfoLevel},
		},
		{
			name:      "loop busy",
			body:      `{"level":3}`,
			ctrlErr:   service.ErrLoopUnavailable,
			want:      http.StatusServiceUnavailable,
			wantLevel: []logger.Level{logger.ErrorLevel},
		},
		{
			name:      "unexpected",
			body:      `{"level":3}`,
			ctrlErr:   errors.New("boom"),
			want:      http.StatusInternalServerError,
			wantLevel: []logger.Level{logger.ErrorLevel},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &mockControl{setLevelErr: tc.ctrlErr}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Control: ctrl})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, authed(http.MethodPut, "/api/v1/log-level", tc.body))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			if len(ctrl.levels) != len(tc.wantLevel) {
				t.Fatalf("SetLevel calls=%v, want %v", ctrl.levels, tc.wantLevel)
			}
			for i := range ctrl.levels {
				if ctrl.levels[i] != tc.wantLevel[i] {
					t.Fatalf("SetLevel calls=%v, want %v", ctrl.levels, tc.wantLevel)
				}
			}
		})
	}
}

func TestSetLogLevel_ResponseNamesLevel(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Control: &mockControl{}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPut, "/api/v1/log-level", `{"level":2}`))

	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["status"] != statusLevelSet || out["level"] != "WARNING" {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestSetLogLevel_RejectionLoggedAtWarning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logger.New(logger.InfoLevel, zapcore.AddSync(&buf))
	ctrl := &mockControl{}
	r := NewHandler(&service.Service{Authorization: &mockAuth{}, Control: ctrl}, log, nil).InitRoutes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPut, "/api/v1/log-level", `{"level":5}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	if len(ctrl.levels) != 0 {
		t.Fatalf("invalid level reached the loop: %v", ctrl.levels)
	}
	if !strings.Contains(buf.String(), "WARN rejected log level") || !strings.Contains(buf.String(), `"level": 5`) {
		t.Fatalf("rejection not logged at Warning:\n%s", buf.String())
	}
}

// silentControl never answers; it returns once the caller gives up.
type silentControl struct {
	mockControl
	hadDeadline bool
}

func (s *silentControl) SetLevel(ctx context.Context, _ logger.Level) error {
	_, s.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return service.ErrLoopUnavailable
}

func TestSetLogLevel_TimesOutWhenLoopSilent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := &silentControl{}
	h := NewHandler(&service.Service{Authorization: &mockAuth{}, Control: ctrl}, nil, nil)
	h.levelTimeout = 20 * time.Millisecond
	r := h.InitRoutes()

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, authed(http.MethodPut, "/api/v1/log-level", `{"level":1}`))
		done <- w
	}()

	select {
	case w := <-done:
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status=%d, want 503", w.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request hung without a deadline")
	}
	if !ctrl.hadDeadline {
		t.Fatal("SetLevel called without a deadline")
	}
}

func TestPressButton(t *testing.T) {
	ctrl := &mockControl{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Control: ctrl})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPost, "/api/v1/button", ""))
	if w.Code != http.StatusAccepted || ctrl.presses != 1 {
		t.Fatalf("status=%d presses=%d", w.Code, ctrl.presses)
	}

	ctrl.pressErr = errors.New("read-only file system")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPost, "/api/v1/button", ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}

func TestMetricsEndpoint_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := NewHandler(&service.Service{}, nil, m).InitRoutes()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `fridge_http_requests_total{route="/health",status="200"} 1`) {
		t.Fatalf("health request not counted:\n%s", w.Body.String())
	}
}

package handlers

import (
	"context"
	"net/http"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
	"smart_fridge/internal/service"

	"github.com/gin-gonic/gin"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockMonitoring serves snapshots from a real board so streaming tests can publish.
type mockMonitoring struct {
	board      *service.StatusBoard
	statusErr  error
	display    repository.DisplayRecord
	displayErr error
}

func newMockMonitoring(snap service.Snapshot) *mockMonitoring {
	b := service.NewStatusBoard()
	b.Publish(snap)
	return &mockMonitoring{board: b}
}

func (m *mockMonitoring) GetStatus(context.Context) (service.Snapshot, error) {
	if m.statusErr != nil {
		return service.Snapshot{}, m.statusErr
	}
	return m.board.Get(), nil
}
func (m *mockMonitoring) GetDisplay(context.Context) (repository.DisplayRecord, error) {
	return m.display, m.displayErr
}
func (m *mockMonitoring) Subscribe() (<-chan service.Snapshot, func()) {
	return m.board.Subscribe()
}

type mockControl struct {
	setLevelErr error
	pressErr    error
	levels      []logger.Level
	presses     int
}

func (m *mockControl) SetLevel(_ context.Context, level logger.Level) error {
	m.levels = append(m.levels, level)
	return m.setLevelErr
}
func (m *mockControl) PressButton(context.Context) error {
	m.presses++
	return m.pressErr
}

type mockEventLog struct {
	resp []models.FridgeEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.FridgeEvent, error) {
	m.last = f
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, nil).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeader(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}

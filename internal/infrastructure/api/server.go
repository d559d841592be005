package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Server는 에이전트의 HTTP 리스너입니다
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer는 주어진 포트에서 수신하는 서버를 생성합니다
func NewServer(port string, handler http.Handler, logger *logrus.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			// 자격 증명 검증은 타임아웃 동안 응답을 보류할 수 있습니다
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start는 백그라운드에서 서비스를 시작합니다. 리스너 실패는 로그로 남깁니다
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("HTTP 서버 시작")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP 서버 실패")
		}
	}()
}

// Shutdown은 새 요청을 거부하고 처리 중인 요청을 기다립니다
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

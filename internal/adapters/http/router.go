// Package http exposes the webhook and test-harness endpoints.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/brtech99/stripcalls/internal/app"
	"github.com/brtech99/stripcalls/internal/config"
	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
)

// twimlEmpty is the provider acknowledgment for a processed webhook.
const twimlEmpty = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// SimulatorSender buffers messages addressed to simulator numbers instead
// of delivering them, so the browser-based test harness can fetch them.
// Everything else goes to the wrapped sender.
type SimulatorSender struct {
	inner  core.Sender
	prefix string

	mu   sync.Mutex
	msgs []domain.Message
}

func NewSimulatorSender(inner core.Sender, prefix string) *SimulatorSender {
	return &SimulatorSender{inner: inner, prefix: prefix}
}

func (s *SimulatorSender) isSimulator(number string) bool {
	return s.prefix != "" && strings.HasPrefix(number, s.prefix)
}

func (s *SimulatorSender) Send(ctx context.Context, msg domain.Message) error {
	if s.isSimulator(msg.To) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.msgs = append(s.msgs, msg)
		return nil
	}
	if s.inner == nil {
		return nil
	}
	return s.inner.Send(ctx, msg)
}

// Drain returns and clears the buffered simulator messages.
func (s *SimulatorSender) Drain() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.msgs
	s.msgs = nil
	return out
}

// SetupRouter wires the webhook, simulator drain and health endpoints.
func SetupRouter(cfg *config.Config, d *app.Dispatcher, sim *SimulatorSender) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/webhook", func(c *gin.Context) {
		in := domain.Inbound{
			From: c.PostForm("From"),
			To:   c.PostForm("To"),
			Body: c.PostForm("Body"),
		}
		if in.From == "" || in.To == "" {
			c.String(http.StatusBadRequest, "missing From or To")
			return
		}
		if err := d.Dispatch(c.Request.Context(), in); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("from", in.From).Msg("dispatch failed")
			c.String(http.StatusOK, twimlEmpty)
			return
		}
		// Simulator senders get their buffered traffic back in the
		// response; real senders get an empty TwiML ack.
		if sim != nil && sim.isSimulator(in.From) {
			c.JSON(http.StatusOK, gin.H{"simulator_messages": sim.Drain()})
			return
		}
		c.Header("Content-Type", "text/xml")
		c.String(http.StatusOK, twimlEmpty)
	})

	r.GET("/messages", func(c *gin.Context) {
		if sim == nil {
			c.JSON(http.StatusOK, gin.H{"messages": []domain.Message{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": sim.Drain()})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

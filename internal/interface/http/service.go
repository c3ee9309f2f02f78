package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morphcodes/morphd/internal/core/application"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/core/ports"
	interfaces "github.com/morphcodes/morphd/internal/interface"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Port    uint32
	OrgRepo domain.OrganizationRepository
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	if c.OrgRepo == nil {
		return fmt.Errorf("missing organization repository")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

type service struct {
	version   string
	config    Config
	appSvc    application.Service
	liveStore ports.LiveStore
	server    *http.Server
}

func NewService(
	version string, svcConfig Config,
	appSvc application.Service, liveStore ports.LiveStore,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	svc := &service{
		version:   version,
		config:    svcConfig,
		appSvc:    appSvc,
		liveStore: liveStore,
	}
	svc.registerRoutes(router)

	svc.server = &http.Server{
		Addr:    svcConfig.address(),
		Handler: router,
	}
	return svc, nil
}

func (s *service) Start() error {
	if err := s.appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start app service: %s", err)
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server exited")
		}
	}()

	log.Infof("started listening at %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// nolint
	s.server.Shutdown(ctx)

	s.appSvc.Stop()
	log.Info("shutdown service")
}

func (s *service) registerRoutes(router *gin.Engine) {
	h := newHandler(s.appSvc)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
	})

	// anonymous scanner endpoint: responses never disclose the precise
	// rejection reason
	router.POST("/scan", h.publicScan)

	v1 := router.Group("/v1")
	v1.Use(apiKeyAuth(s.config.OrgRepo))
	v1.Use(rateLimit(s.liveStore.RateLimits()))
	{
		v1.POST("/chains", h.createChain)
		v1.GET("/chains", h.listChains)
		v1.GET("/chains/:chainId", h.getChain)
		v1.GET("/chains/:chainId/current", h.getCurrentToken)
		v1.POST("/chains/:chainId/scan", h.ownerScan)
		v1.POST("/chains/:chainId/deactivate", h.deactivateChain)
		v1.GET("/chains/:chainId/scans", h.getScans)
		v1.GET("/chains/:chainId/stats", h.getStats)
		v1.GET("/chains/:chainId/export", h.exportScans)
	}
}

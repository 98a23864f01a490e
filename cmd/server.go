/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"

	"github.com/cashrewards/memberhub/api"
	"github.com/cashrewards/memberhub/config"
	trace "github.com/cashrewards/memberhub/internal/traces"
)

/*
serveTLS starts an HTTPS server with TLS enabled using CertMagic for automatic certificate management.
If no domain is specified, the server will default to running on localhost.
*/
func serveTLS(r *gin.Engine, conf config.ServerConfig) error {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()
	cfg.Storage = &certmagic.FileStorage{Path: "certmagic"}

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		log.Println("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(context.Background(), domains); err != nil {
		return err
	}

	server := &http.Server{
		Addr:      ":" + conf.Port,
		Handler:   r,
		TLSConfig: cfg.TLSConfig(),
	}

	log.Printf("Starting HTTPS server on %s\n", conf.Port)
	if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start HTTPS server: %v", err)
	}

	return nil
}

// sendHeartbeat initializes and maintains a periodic heartbeat to PostHog
func sendHeartbeat(client posthog.Client, heartbeatID string) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			if err := client.Enqueue(posthog.Capture{
				DistinctId: heartbeatID,
				Event:      "server_heartbeat",
				Properties: map[string]interface{}{
					"timestamp": time.Now().UTC(),
				},
			}); err != nil {
				log.Printf("Failed to send heartbeat: %v", err)
			}
		}
	}()
}

func initializeRouter(m *memberhubInstance) *gin.Engine {
	return api.NewAPI(m.hub).Router()
}

func initializeTracing(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := trace.SetupOTelSDK(ctx, "MEMBERHUB")
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	return shutdown, nil
}

// initializePostHog starts the heartbeat when MEMBERHUB_POSTHOG_KEY is set.
func initializePostHog() (posthog.Client, string) {
	key := os.Getenv("MEMBERHUB_POSTHOG_KEY")
	if key == "" {
		return nil, ""
	}
	client, err := posthog.NewWithConfig(key, posthog.Config{Endpoint: "https://us.i.posthog.com"})
	if err != nil {
		log.Printf("PostHog disabled: %v", err)
		return nil, ""
	}
	heartbeatID := uuid.New().String()
	sendHeartbeat(client, heartbeatID)
	return client, heartbeatID
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	if cfg.SSL {
		return serveTLS(router, cfg)
	}
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

func initializeObservability(ctx context.Context, cfg *config.Configuration) (posthog.Client, func(context.Context) error, error) {
	if !cfg.EnableTelemetry {
		return nil, func(context.Context) error { return nil }, nil
	}

	shutdown, err := initializeTracing(ctx)
	if err != nil {
		return nil, nil, err
	}

	phClient, _ := initializePostHog()
	return phClient, shutdown, nil
}

// serverCommands returns the command that serves the withdrawal API.
func serverCommands(m *memberhubInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start memberhub server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			cfg, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}

			phClient, shutdown, err := initializeObservability(ctx, cfg)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}
			if phClient != nil {
				defer phClient.Close()
			}
			defer m.hub.Close()

			router := initializeRouter(m)
			if err := startServer(router, cfg.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}

// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/service"
	"github.com/storely/meetgate/pkg/utils"
)

// flags are the command line flags for the meeting gateway.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meeting gateway.
type environment struct {
	Port                   string
	NatsURL                string
	AdminUsernames         []string
	EndedSuppressionWindow time.Duration
	FallbackSettings       *models.TenantSettings
}

// parseFlags parses command line flags for the meeting gateway
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meeting gateway
func parseEnv() environment {
	port := utils.CoalesceString(os.Getenv("PORT"), "8080")
	natsURL := utils.CoalesceString(os.Getenv("NATS_URL"), "nats://localhost:4222")

	var adminUsernames []string
	for _, name := range strings.Split(os.Getenv("ADMIN_USERNAMES"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			adminUsernames = append(adminUsernames, name)
		}
	}

	suppressionWindow := service.DefaultEndedSuppressionWindow
	if raw := os.Getenv("ENDED_SUPPRESSION_WINDOW"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			slog.With(logging.ErrKey, err, "value", raw).
				Error("invalid ENDED_SUPPRESSION_WINDOW, using default")
		} else {
			suppressionWindow = parsed
		}
	}

	return environment{
		Port:                   port,
		NatsURL:                natsURL,
		AdminUsernames:         adminUsernames,
		EndedSuppressionWindow: suppressionWindow,
		FallbackSettings:       parseFallbackSettings(),
	}
}

// parseFallbackSettings reads single-tenant provider credentials from the
// environment. Multi-tenant installs leave these unset and store credentials
// per tenant instead.
func parseFallbackSettings() *models.TenantSettings {
	settings := &models.TenantSettings{
		AccountID:      os.Getenv("ZOOM_ACCOUNT_ID"),
		ClientID:       os.Getenv("ZOOM_CLIENT_ID"),
		ClientSecret:   os.Getenv("ZOOM_CLIENT_SECRET"),
		SDKKey:         os.Getenv("ZOOM_SDK_KEY"),
		SDKSecret:      os.Getenv("ZOOM_SDK_SECRET"),
		WebhookSecret:  os.Getenv("ZOOM_WEBHOOK_SECRET"),
		FixedMeetingID: os.Getenv("ZOOM_FIXED_MEETING_ID"),
	}

	if settings.AccountID == "" && settings.ClientID == "" && settings.SDKKey == "" {
		return nil
	}

	return settings
}

package fuzz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Billy-Davies-2/scorebored/internal/handlers"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
)

func init() {
	logger.Init("error")
}

func newRoutes(t *testing.T) http.Handler {
	ps := pubsub.New()
	svc, err := scoreboard.New(scoreboard.Options{Broker: ps})
	if err != nil {
		t.Fatalf("scoreboard.New() failed: %v", err)
	}
	return handlers.NewAPIHandlers(svc, ps).Routes(nil)
}

func post(t *testing.T, routes http.Handler, path, data string) int {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	return w.Code
}

// FuzzHTTPScorePoint fuzzes the point endpoint
func FuzzHTTPScorePoint(f *testing.F) {
	f.Add(`{"side":"left"}`)
	f.Add(`{"side":"R"}`)
	f.Add(`{"side":"none"}`)
	f.Add(`{"side":7}`)

	f.Fuzz(func(t *testing.T, data string) {
		routes := newRoutes(t)

		// Never a server error: bad input is the caller's fault.
		for i := 0; i < 3; i++ {
			if code := post(t, routes, "/api/match/point", data); code >= 500 {
				t.Fatalf("point returned %d for %q", code, data)
			}
		}
	})
}

// FuzzHTTPSettings fuzzes the settings endpoint
func FuzzHTTPSettings(f *testing.F) {
	f.Add(`{"gameLength":"eleven","matchLength":"best_of_three","style":"classic"}`)
	f.Add(`{"gameLength":"twenty_one","subtitles":true}`)
	f.Add(`{"matchLength":"best_of_nine"}`)
	f.Add(`{"gameLength":11}`)

	f.Fuzz(func(t *testing.T, data string) {
		routes := newRoutes(t)
		if code := post(t, routes, "/api/match/settings", data); code >= 500 {
			t.Fatalf("settings returned %d for %q", code, data)
		}
	})
}

// FuzzHTTPUpdateTeam fuzzes the team endpoint
func FuzzHTTPUpdateTeam(f *testing.F) {
	f.Add(`{"side":"left","name":"Dinkers","color":"led_green"}`)
	f.Add(`{"side":"right","presetId":"home"}`)
	f.Add(`{"side":"left","name":""}`)
	f.Add(`{"name":"` + string(make([]byte, 10000)) + `"}`)

	f.Fuzz(func(t *testing.T, data string) {
		routes := newRoutes(t)
		if code := post(t, routes, "/api/match/team", data); code >= 500 {
			t.Fatalf("team returned %d for %q", code, data)
		}
	})
}

// FuzzHTTPSavePreset fuzzes the preset endpoint
func FuzzHTTPSavePreset(f *testing.F) {
	f.Add(`{"name":"Smashers","color":"orange"}`)
	f.Add(`{"id":"home","name":"Renamed","color":"led_red"}`)
	f.Add(`{"name":"","color":"led_red"}`)

	f.Fuzz(func(t *testing.T, data string) {
		routes := newRoutes(t)
		if code := post(t, routes, "/api/presets/save", data); code >= 500 {
			t.Fatalf("save preset returned %d for %q", code, data)
		}
	})
}

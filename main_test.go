package main

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigureLogLevelFromEnv_Disabled(t *testing.T) {
	testCases := []struct {
		envVal      string
		expectedLvl zerolog.Level
	}{
		{"false", zerolog.Disabled},
		{"0", zerolog.Disabled},
		{"", zerolog.Disabled},
	}

	for _, tc := range testCases {
		os.Setenv("DEBUG_EXACTLY", tc.envVal)
		configureLogLevelFromEnv()
		if zerolog.GlobalLevel() != tc.expectedLvl {
			t.Errorf("DEBUG_EXACTLY=%q: expected log level %v, got %v",
				tc.envVal, tc.expectedLvl, zerolog.GlobalLevel())
		}
	}
}

func TestConfigureLogLevelFromEnv_Debug(t *testing.T) {
	testCases := []struct {
		envVal      string
		expectedLvl zerolog.Level
	}{
		{"true", zerolog.DebugLevel},
		{"1", zerolog.DebugLevel},
		{"random", zerolog.DebugLevel},
	}

	for _, tc := range testCases {
		os.Setenv("DEBUG_EXACTLY", tc.envVal)
		configureLogLevelFromEnv()
		if zerolog.GlobalLevel() != tc.expectedLvl {
			t.Errorf("DEBUG_EXACTLY=%q: expected log level %v, got %v",
				tc.envVal, tc.expectedLvl, zerolog.GlobalLevel())
		}
	}
}

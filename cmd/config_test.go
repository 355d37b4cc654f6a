package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSettingDefaultConfigEnvOverrides(t *testing.T) {
	tests := []struct {
		env   string
		value string
		check func(t *testing.T)
	}{
		{"SEARCH_TOP_K", "9", func(t *testing.T) { assert.Equal(t, 9, viper.GetInt("search.top_k")) }},
		{"SEARCH_GAP_THRESHOLD", "0.7", func(t *testing.T) { assert.InDelta(t, 0.7, viper.GetFloat64("search.gap_threshold"), 1e-9) }},
		{"ENRICHMENT_RATE", "3.5", func(t *testing.T) { assert.InDelta(t, 3.5, viper.GetFloat64("enrichment.rate"), 1e-9) }},
		{"ENRICHMENT_BURST", "5", func(t *testing.T) { assert.Equal(t, 5, viper.GetInt("enrichment.burst")) }},
		{"ENRICHMENT_TOP_K", "4", func(t *testing.T) { assert.Equal(t, 4, viper.GetInt("enrichment.top_k")) }},
		{"ENRICHMENT_LANGUAGE", "de", func(t *testing.T) { assert.Equal(t, "de", viper.GetString("enrichment.language")) }},
		{"ENRICHMENT_DOC_MAX_CHARS", "500", func(t *testing.T) { assert.Equal(t, 500, viper.GetInt("enrichment.doc_max_chars")) }},
		{"ENRICHMENT_USER_AGENT", "tester/1.0", func(t *testing.T) { assert.Equal(t, "tester/1.0", viper.GetString("enrichment.user_agent")) }},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(tt.env, tt.value)

			settingDefaultConfig()
			tt.check(t)
		})
	}
}

func TestSettingDefaultConfigPorts(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	settingDefaultConfig()

	assert.Equal(t, "8000", viper.GetString("server.port"))
	assert.Equal(t, "http://localhost:8001", viper.GetString("chroma.url"))
	assert.NotContains(t, viper.GetString("chroma.url"), ":"+viper.GetString("server.port"))
}

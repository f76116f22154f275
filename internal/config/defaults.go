package config

import "convosim/internal/sampler"

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			WorkDir:  ".",
		},
		Export: ExportConfig{
			Dir:     ".",
			Pattern: "message_*.json",
		},
		Participants: ParticipantsConfig{
			A: ParticipantConfig{
				Name:   "Michael Usachenko",
				Label:  "MICHAEL",
				Corpus: "mu_corpus.txt",
			},
			B: ParticipantConfig{
				Name:   "Jonathan Shobrook",
				Label:  "JONATHAN",
				Corpus: "js_corpus.txt",
			},
		},
		Conversation: ConversationConfig{
			Rounds: 100,
			Mode:   "independent",
		},
		Model: ModelConfig{
			StateSize:       2,
			Tries:           10,
			TestOutput:      true,
			MaxOverlapRatio: 0.7,
			MaxOverlapTotal: 15,
		},
		Generation: GenerationConfig{
			MaxRetries: sampler.DefaultMaxRetries,
		},
		Archive: ArchiveConfig{
			DBPath: "~/.convosim/archive.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "convosim.prom",
		},
	}
}

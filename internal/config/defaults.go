package config

const (
	defaultWorkDir   = "~/.local/share/reelsmith/work"
	defaultOutputDir = "~/.local/share/reelsmith/output"
	defaultLogDir    = "~/.local/share/reelsmith/logs"
	defaultAPIBind   = "127.0.0.1:8590"

	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModel   = "eleven_monolingual_v1"
	defaultElevenLabsVoice   = "KUJ0dDUYhYz8c1Is7Ct6"
	defaultStability         = 0.7
	defaultSimilarityBoost   = 0.7
	defaultSynthesisTimeout  = 60

	defaultPexelsBaseURL   = "https://api.pexels.com"
	defaultSearchTimeout   = 20
	defaultDownloadTimeout = 60

	defaultVideoWidth       = 720
	defaultVideoHeight      = 1280
	defaultMinClips         = 2
	defaultMaxClips         = 5
	defaultPreset           = "ultrafast"
	defaultCRF              = 28
	defaultAudioBitrate     = "128k"
	defaultNormalizeTimeout = 120
	defaultConcatTimeout    = 180
	defaultMuxTimeout       = 120
	defaultBurnInTimeout    = 180

	defaultWordsPerCue     = 3
	defaultCaptionFont     = "Arial"
	defaultCaptionFontSize = 24
	defaultCaptionMarginV  = 30

	defaultMaxConcurrentTasks = 2
	defaultRetentionHours     = 24
	defaultSweepIntervalMins  = 10
	defaultNotifyTimeout      = 30

	defaultLogFormat = ""
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		ElevenLabs: ElevenLabs{
			VoiceID:         defaultElevenLabsVoice,
			BaseURL:         defaultElevenLabsBaseURL,
			ModelID:         defaultElevenLabsModel,
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarityBoost,
			RequestTimeout:  defaultSynthesisTimeout,
		},
		Pexels: Pexels{
			BaseURL:         defaultPexelsBaseURL,
			RequestTimeout:  defaultSearchTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Video: Video{
			Width:            defaultVideoWidth,
			Height:           defaultVideoHeight,
			MinClips:         defaultMinClips,
			MaxClips:         defaultMaxClips,
			FFmpegBinary:     "ffmpeg",
			FFprobeBinary:    "ffprobe",
			Preset:           defaultPreset,
			CRF:              defaultCRF,
			AudioBitrate:     defaultAudioBitrate,
			NormalizeTimeout: defaultNormalizeTimeout,
			ConcatTimeout:    defaultConcatTimeout,
			MuxTimeout:       defaultMuxTimeout,
			BurnInTimeout:    defaultBurnInTimeout,
		},
		Captions: Captions{
			Enabled:     true,
			WordsPerCue: defaultWordsPerCue,
			FontName:    defaultCaptionFont,
			FontSize:    defaultCaptionFontSize,
			MarginV:     defaultCaptionMarginV,
		},
		Workflow: Workflow{
			MaxConcurrentTasks: defaultMaxConcurrentTasks,
			TaskRetentionHours: defaultRetentionHours,
			SweepIntervalMins:  defaultSweepIntervalMins,
			NotifyTimeout:      defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

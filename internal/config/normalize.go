package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeVideo()
	c.normalizeCaptions()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

// normalizeProviders applies environment fallbacks for credentials so
// deployments can keep secrets out of the config file.
func (c *Config) normalizeProviders() {
	if strings.TrimSpace(c.ElevenLabs.APIKey) == "" {
		c.ElevenLabs.APIKey = strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))
	}
	if strings.TrimSpace(c.ElevenLabs.VoiceID) == "" {
		if voice := strings.TrimSpace(os.Getenv("VOICE_ID")); voice != "" {
			c.ElevenLabs.VoiceID = voice
		} else {
			c.ElevenLabs.VoiceID = defaultElevenLabsVoice
		}
	}
	if strings.TrimSpace(c.ElevenLabs.BaseURL) == "" {
		c.ElevenLabs.BaseURL = defaultElevenLabsBaseURL
	}
	c.ElevenLabs.BaseURL = strings.TrimRight(c.ElevenLabs.BaseURL, "/")
	if strings.TrimSpace(c.ElevenLabs.ModelID) == "" {
		c.ElevenLabs.ModelID = defaultElevenLabsModel
	}
	if c.ElevenLabs.RequestTimeout <= 0 {
		c.ElevenLabs.RequestTimeout = defaultSynthesisTimeout
	}

	if strings.TrimSpace(c.Pexels.APIKey) == "" {
		c.Pexels.APIKey = strings.TrimSpace(os.Getenv("PEXELS_API_KEY"))
	}
	if strings.TrimSpace(c.Pexels.BaseURL) == "" {
		c.Pexels.BaseURL = defaultPexelsBaseURL
	}
	c.Pexels.BaseURL = strings.TrimRight(c.Pexels.BaseURL, "/")
	if c.Pexels.RequestTimeout <= 0 {
		c.Pexels.RequestTimeout = defaultSearchTimeout
	}
	if c.Pexels.DownloadTimeout <= 0 {
		c.Pexels.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.Width <= 0 {
		c.Video.Width = defaultVideoWidth
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaultVideoHeight
	}
	if c.Video.MinClips <= 0 {
		c.Video.MinClips = defaultMinClips
	}
	if c.Video.MaxClips <= 0 {
		c.Video.MaxClips = defaultMaxClips
	}
	if strings.TrimSpace(c.Video.FFmpegBinary) == "" {
		c.Video.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(c.Video.FFprobeBinary) == "" {
		c.Video.FFprobeBinary = "ffprobe"
	}
	if strings.TrimSpace(c.Video.Preset) == "" {
		c.Video.Preset = defaultPreset
	}
	if c.Video.CRF <= 0 {
		c.Video.CRF = defaultCRF
	}
	if strings.TrimSpace(c.Video.AudioBitrate) == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
	if c.Video.NormalizeTimeout <= 0 {
		c.Video.NormalizeTimeout = defaultNormalizeTimeout
	}
	if c.Video.ConcatTimeout <= 0 {
		c.Video.ConcatTimeout = defaultConcatTimeout
	}
	if c.Video.MuxTimeout <= 0 {
		c.Video.MuxTimeout = defaultMuxTimeout
	}
	if c.Video.BurnInTimeout <= 0 {
		c.Video.BurnInTimeout = defaultBurnInTimeout
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.WordsPerCue <= 0 {
		c.Captions.WordsPerCue = defaultWordsPerCue
	}
	if strings.TrimSpace(c.Captions.FontName) == "" {
		c.Captions.FontName = defaultCaptionFont
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = defaultCaptionFontSize
	}
	if c.Captions.MarginV <= 0 {
		c.Captions.MarginV = defaultCaptionMarginV
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxConcurrentTasks <= 0 {
		c.Workflow.MaxConcurrentTasks = defaultMaxConcurrentTasks
	}
	if c.Workflow.TaskRetentionHours <= 0 {
		c.Workflow.TaskRetentionHours = defaultRetentionHours
	}
	if c.Workflow.SweepIntervalMins <= 0 {
		c.Workflow.SweepIntervalMins = defaultSweepIntervalMins
	}
	if c.Workflow.NotifyTimeout <= 0 {
		c.Workflow.NotifyTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.ElevenLabs.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsmith/config.toml"
		}
		return fmt.Errorf("elevenlabs.api_key is required. Set ELEVENLABS_API_KEY env var or edit %s (create with 'reelsmith config init')", defaultPath)
	}
	if c.Pexels.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsmith/config.toml"
		}
		return fmt.Errorf("pexels.api_key is required. Set PEXELS_API_KEY env var or edit %s (create with 'reelsmith config init')", defaultPath)
	}
	if c.ElevenLabs.Stability < 0 || c.ElevenLabs.Stability > 1 {
		return errors.New("elevenlabs.stability must be between 0 and 1")
	}
	if c.ElevenLabs.SimilarityBoost < 0 || c.ElevenLabs.SimilarityBoost > 1 {
		return errors.New("elevenlabs.similarity_boost must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return errors.New("video.width and video.height must be even (encoder requirement)")
	}
	if c.Video.MinClips < 2 {
		return errors.New("video.min_clips must be at least 2")
	}
	if c.Video.MaxClips < c.Video.MinClips {
		return fmt.Errorf("video.max_clips (%d) must be >= video.min_clips (%d)", c.Video.MaxClips, c.Video.MinClips)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.WordsPerCue < 1 {
		return errors.New("captions.words_per_cue must be at least 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxConcurrentTasks < 1 {
		return errors.New("workflow.max_concurrent_tasks must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}

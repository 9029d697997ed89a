package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
}

func TestLoad_MaxFileBytesFromEnv(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "1048576") // 1 MiB

	cfg := Load()

	if cfg.MaxFileSizeBytes != 1_048_576 {
		t.Errorf("MaxFileSizeBytes = %d, want 1048576", cfg.MaxFileSizeBytes)
	}
}

func TestLoad_InvalidMaxFileBytesIgnored(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "not-a-number")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want default %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
}

func TestLoad_ZeroMaxFileBytesIgnored(t *testing.T) {
	t.Setenv(EnvMaxFileBytes, "0")

	cfg := Load()

	if cfg.MaxFileSizeBytes != DefaultMaxFileBytes {
		t.Errorf("MaxFileSizeBytes = %d, want default %d", cfg.MaxFileSizeBytes, DefaultMaxFileBytes)
	}
}

func TestMaxFileSizeMB(t *testing.T) {
	cfg := &Config{MaxFileSizeBytes: 10 << 20} // 10 MiB
	if got := cfg.MaxFileSizeMB(); got != 10 {
		t.Errorf("MaxFileSizeMB() = %d, want 10", got)
	}
}

func TestDefault_MatchesPipelineLayout(t *testing.T) {
	cfg := Default()

	if cfg.WhisperModel != "tiny" || cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("models = %q/%q, want tiny/gemini-2.5-pro", cfg.WhisperModel, cfg.GeminiModel)
	}
	if cfg.AudioWorkers != 3 || cfg.LLMWorkers != 5 {
		t.Errorf("workers = %d/%d, want 3/5", cfg.AudioWorkers, cfg.LLMWorkers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad_WorkersAndClassesFromEnv(t *testing.T) {
	t.Setenv(EnvAudioWorkers, "2")
	t.Setenv(EnvLLMWorkers, "-4")
	t.Setenv(EnvClasses, strings.Join([]string{"/law/Con Law", "/law/Property"}, string(filepath.ListSeparator)))

	cfg := Load()

	if cfg.AudioWorkers != 2 {
		t.Errorf("AudioWorkers = %d, want 2", cfg.AudioWorkers)
	}
	if cfg.LLMWorkers != DefaultLLMWorkers {
		t.Errorf("LLMWorkers = %d, want default %d", cfg.LLMWorkers, DefaultLLMWorkers)
	}
	if len(cfg.Classes) != 2 || cfg.Classes[1] != "/law/Property" {
		t.Errorf("Classes = %v", cfg.Classes)
	}
}

func TestLoadFile_YAMLThenDotenvThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lawnotes.yaml")
	yamlDoc := `classes:
  - /law/Torts
gemini_model: from-yaml
whisper_model: from-yaml
llm_workers: 7
prettier_timeout: 3s
folders:
  llm_base: Notes
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	dotenv := "LAWNOTES_WHISPER_MODEL=from-dotenv\nGEMINI_API_KEY=secret\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvGeminiModel, "from-env")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.GeminiModel != "from-env" {
		t.Errorf("GeminiModel = %q, want from-env", cfg.GeminiModel)
	}
	if cfg.WhisperModel != "from-dotenv" {
		t.Errorf("WhisperModel = %q, want from-dotenv", cfg.WhisperModel)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("GeminiAPIKey = %q, want secret", cfg.GeminiAPIKey)
	}
	if cfg.LLMWorkers != 7 {
		t.Errorf("LLMWorkers = %d, want 7", cfg.LLMWorkers)
	}
	if cfg.PrettierTimeout != 3*time.Second {
		t.Errorf("PrettierTimeout = %s, want 3s", cfg.PrettierTimeout)
	}
	if cfg.Folders.LLMBase != "Notes" || cfg.Folders.LectureInput != "lecture-input" {
		t.Errorf("Folders = %+v, want LLM base overridden and the rest defaulted", cfg.Folders)
	}
	if len(cfg.Classes) != 1 || cfg.Classes[0] != "/law/Torts" {
		t.Errorf("Classes = %v", cfg.Classes)
	}
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LLMWorkers != DefaultLLMWorkers {
		t.Errorf("LLMWorkers = %d, want %d", cfg.LLMWorkers, DefaultLLMWorkers)
	}
}

func TestLoadFile_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("audio_workers: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "audio_workers") {
		t.Errorf("LoadFile() error = %v, want audio_workers complaint", err)
	}
}

func TestPathsFor(t *testing.T) {
	cfg := Default()
	root := filepath.Join("law", "Con Law")

	p := cfg.PathsFor(root)

	if p.ClassName != "Con Law" {
		t.Errorf("ClassName = %q, want Con Law", p.ClassName)
	}
	want := filepath.Join(root, "LLM", "lecture-processed", "audio")
	if p.LectureProcessedAudio != want {
		t.Errorf("LectureProcessedAudio = %q, want %q", p.LectureProcessedAudio, want)
	}
	if got := len(p.All()); got != 7 {
		t.Errorf("All() returned %d folders, want 7", got)
	}
}

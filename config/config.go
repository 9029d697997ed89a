package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stateful/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names. Values set in the environment, or in a .env
// file next to the config file, override the YAML file.
const (
	EnvMaxFileBytes    = "LAWNOTES_MAX_FILE_BYTES"
	EnvClasses         = "LAWNOTES_CLASSES"
	EnvWhisperModel    = "LAWNOTES_WHISPER_MODEL"
	EnvGeminiModel     = "LAWNOTES_GEMINI_MODEL"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAudioWorkers    = "LAWNOTES_AUDIO_WORKERS"
	EnvLLMWorkers      = "LAWNOTES_LLM_WORKERS"
	EnvPromptDir       = "LAWNOTES_PROMPT_DIR"
	EnvNewOutputsDir   = "LAWNOTES_NEW_OUTPUTS_DIR"
	EnvDriveParentID   = "LAWNOTES_DRIVE_PARENT_FOLDER_ID"
	EnvDriveClassesID  = "LAWNOTES_DRIVE_CLASSES_FOLDER_ID"
	EnvCredentialsFile = "LAWNOTES_CREDENTIALS_FILE"
	EnvTokenFile       = "LAWNOTES_TOKEN_FILE"
	EnvLogDir          = "LAWNOTES_LOG_DIR"
	EnvPrettier        = "LAWNOTES_PRETTIER"
)

const (
	// DefaultMaxFileBytes is the default maximum accepted reading file size (50 MiB).
	DefaultMaxFileBytes int64 = 50 << 20

	DefaultWhisperModel    = "tiny"
	DefaultGeminiModel     = "gemini-2.5-pro"
	DefaultMaxOutputTokens = 65536
	DefaultAudioWorkers    = 3
	DefaultLLMWorkers      = 5
	DefaultPrettierTimeout = 10 * time.Second
)

// Folders names the directories created under each class folder.
type Folders struct {
	LLMBase               string `yaml:"llm_base"`
	LectureInput          string `yaml:"lecture_input"`
	LectureOutput         string `yaml:"lecture_output"`
	LectureProcessed      string `yaml:"lecture_processed"`
	LectureProcessedAudio string `yaml:"lecture_processed_audio"`
	LectureProcessedTxt   string `yaml:"lecture_processed_txt"`
	ReadingInput          string `yaml:"reading_input"`
	ReadingOutput         string `yaml:"reading_output"`
	ReadingProcessed      string `yaml:"reading_processed"`
}

// Config holds runtime configuration.
type Config struct {
	// Classes are the local class folders; the folder name is the class name.
	Classes []string `yaml:"classes"`

	MaxFileSizeBytes int64 `yaml:"max_file_bytes"`

	WhisperModel    string `yaml:"whisper_model"`
	GeminiModel     string `yaml:"gemini_model"`
	GeminiAPIKey    string `yaml:"-"`
	MaxOutputTokens int32  `yaml:"max_output_tokens"`
	AudioWorkers    int    `yaml:"audio_workers"`
	LLMWorkers      int    `yaml:"llm_workers"`

	Folders Folders `yaml:"folders"`

	PromptDir         string `yaml:"prompt_dir"`
	LecturePromptFile string `yaml:"lecture_prompt"`
	ReadingPromptFile string `yaml:"reading_prompt"`

	// NewOutputsDir receives a copy of every generated notes file.
	NewOutputsDir string `yaml:"new_outputs_dir"`

	DriveParentFolderID  string `yaml:"drive_parent_folder_id"`
	DriveClassesFolderID string `yaml:"drive_classes_folder_id"`
	CredentialsFile      string `yaml:"credentials_file"`
	TokenFile            string `yaml:"token_file"`

	LogDir string `yaml:"log_dir"`

	Prettier        bool          `yaml:"prettier"`
	PrettierTimeout time.Duration `yaml:"prettier_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxFileSizeBytes: DefaultMaxFileBytes,
		WhisperModel:     DefaultWhisperModel,
		GeminiModel:      DefaultGeminiModel,
		MaxOutputTokens:  DefaultMaxOutputTokens,
		AudioWorkers:     DefaultAudioWorkers,
		LLMWorkers:       DefaultLLMWorkers,
		Folders: Folders{
			LLMBase:               "LLM",
			LectureInput:          "lecture-input",
			LectureOutput:         "lecture-output",
			LectureProcessed:      "lecture-processed",
			LectureProcessedAudio: "audio",
			LectureProcessedTxt:   "txt",
			ReadingInput:          "reading-input",
			ReadingOutput:         "reading-output",
			ReadingProcessed:      "reading-processed",
		},
		PromptDir:         "prompts",
		LecturePromptFile: "lecture.md",
		ReadingPromptFile: "reading.md",
		NewOutputsDir:     "new-outputs-safe-delete",
		CredentialsFile:   "credentials.json",
		TokenFile:         "token.json",
		LogDir:            "logs",
		Prettier:          true,
		PrettierTimeout:   DefaultPrettierTimeout,
	}
}

// MaxFileSizeMB returns the configured limit in whole megabytes.
func (c *Config) MaxFileSizeMB() int64 {
	return c.MaxFileSizeBytes >> 20
}

// Load reads Config from environment variables, falling back to defaults for
// missing or invalid values.
func Load() *Config {
	cfg := Default()
	cfg.applyEnv(os.Getenv)
	return cfg
}

// LoadFile layers an optional YAML file, a .env file in the same directory
// and the process environment over the defaults, in that order. An empty path
// or a missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	dir := "."

	if path != "" {
		dir = filepath.Dir(path)
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	dotenv, err := readDotenv(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	values, _, err := godotenv.UnmarshalBytesWithComments(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if n, err := strconv.Atoi(getenv(key)); err == nil && n > 0 {
			*dst = n
		}
	}

	if v := getenv(EnvMaxFileBytes); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxFileSizeBytes = n
		}
	}
	if v := getenv(EnvClasses); v != "" {
		c.Classes = filepath.SplitList(v)
	}
	setString(&c.WhisperModel, EnvWhisperModel)
	setString(&c.GeminiModel, EnvGeminiModel)
	setString(&c.GeminiAPIKey, EnvGeminiAPIKey)
	setInt(&c.AudioWorkers, EnvAudioWorkers)
	setInt(&c.LLMWorkers, EnvLLMWorkers)
	setString(&c.PromptDir, EnvPromptDir)
	setString(&c.NewOutputsDir, EnvNewOutputsDir)
	setString(&c.DriveParentFolderID, EnvDriveParentID)
	setString(&c.DriveClassesFolderID, EnvDriveClassesID)
	setString(&c.CredentialsFile, EnvCredentialsFile)
	setString(&c.TokenFile, EnvTokenFile)
	setString(&c.LogDir, EnvLogDir)
	if v := getenv(EnvPrettier); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Prettier = b
		}
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var problems []string
	if c.AudioWorkers < 1 {
		problems = append(problems, "audio_workers must be at least 1")
	}
	if c.LLMWorkers < 1 {
		problems = append(problems, "llm_workers must be at least 1")
	}
	if c.MaxFileSizeBytes <= 0 {
		problems = append(problems, "max_file_bytes must be positive")
	}
	for _, name := range []string{c.Folders.LLMBase, c.Folders.LectureInput, c.Folders.LectureOutput,
		c.Folders.ReadingInput, c.Folders.ReadingOutput} {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "folder names must not be empty")
			break
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ClassPaths are the folders used for one class.
type ClassPaths struct {
	ClassName             string
	Root                  string
	LectureInput          string
	LectureOutput         string
	LectureProcessedAudio string
	LectureProcessedTxt   string
	ReadingInput          string
	ReadingOutput         string
	ReadingProcessed      string
}

// PathsFor returns the folder layout for the class folder classDir.
func (c *Config) PathsFor(classDir string) ClassPaths {
	base := filepath.Join(classDir, c.Folders.LLMBase)
	processed := filepath.Join(base, c.Folders.LectureProcessed)
	return ClassPaths{
		ClassName:             filepath.Base(filepath.Clean(classDir)),
		Root:                  classDir,
		LectureInput:          filepath.Join(base, c.Folders.LectureInput),
		LectureOutput:         filepath.Join(base, c.Folders.LectureOutput),
		LectureProcessedAudio: filepath.Join(processed, c.Folders.LectureProcessedAudio),
		LectureProcessedTxt:   filepath.Join(processed, c.Folders.LectureProcessedTxt),
		ReadingInput:          filepath.Join(base, c.Folders.ReadingInput),
		ReadingOutput:         filepath.Join(base, c.Folders.ReadingOutput),
		ReadingProcessed:      filepath.Join(base, c.Folders.ReadingProcessed),
	}
}

// All lists every folder a class needs, in creation order.
func (p ClassPaths) All() []string {
	return []string{
		p.LectureInput,
		p.LectureOutput,
		p.LectureProcessedAudio,
		p.LectureProcessedTxt,
		p.ReadingInput,
		p.ReadingOutput,
		p.ReadingProcessed,
	}
}

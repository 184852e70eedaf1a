package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/constants"
)

// Environment variables read through viper (prefix SCAFFOLD_).
const (
	CacheDirEnvVar       = constants.EnvPrefix + "_CACHE_DIR"
	ModeEnvVar           = constants.EnvPrefix + "_MODE"
	NoUpdateCheckEnvVar  = constants.EnvPrefix + "_NO_UPDATE_CHECK"
	NonInteractiveEnvVar = constants.EnvPrefix + "_NON_INTERACTIVE"
)

const modeSettingName = "mode"

const loadEnvErrorMessage = "Not able to load configuration from .env file, skipping this optional step.\n" +
	"Environment variables exported in the shell are still used."

// Settings holds the resolved configuration of one invocation.
type Settings struct {
	Paths          Paths
	Mode           string
	NonInteractive bool
	NoUpdateCheck  bool
}

// New loads the optional .env file, binds environment variables and resolves
// application paths.
func New(logger *zerolog.Logger, v *viper.Viper) (*Settings, error) {
	envPath := v.GetString(Flags.CliEnvFile.Name)

	if err := LoadEnv(envPath); err != nil {
		logger.Debug().Err(err).Msg(loadEnvErrorMessage)
	}

	BindEnv(v)

	paths, err := ResolvePaths(v.GetString(Flags.CacheDir.Name))
	if err != nil {
		return nil, err
	}
	logger.Debug().Msgf("Application root: %s", paths.Root)

	mode := v.GetString(modeSettingName)
	if mode == "" {
		mode = constants.DefaultMode
	}

	return &Settings{
		Paths:          paths,
		Mode:           mode,
		NonInteractive: v.GetBool(Flags.NonInteractive.Name),
		NoUpdateCheck:  v.GetBool("no-update-check"),
	}, nil
}

// BindEnv makes every flag readable from SCAFFOLD_<FLAG_NAME>.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadEnv loads envPath, or the nearest .env walking up from the working
// directory when envPath is empty or missing. Variables already set win.
func LoadEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading file from %s: %w", envPath, err)
			}
			return nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting working directory: %w", err)
	}

	foundEnvPath, err := findEnvFile(cwd, constants.DefaultEnvFileName)
	if err != nil {
		return fmt.Errorf("error loading environment: %w", err)
	}

	if err := godotenv.Load(foundEnvPath); err != nil {
		return fmt.Errorf("error loading file from %s: %w", foundEnvPath, err)
	}
	return nil
}

func findEnvFile(startDir, fileName string) (string, error) {
	dir := startDir

	for {
		filePath := filepath.Join(dir, fileName)

		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			return filePath, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}
	return "", fmt.Errorf("file %s not found in any parent directory starting from %s", fileName, startDir)
}

package config

import (
	"os"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// ExampleChapters is the chapter table of the higurashi-assembly experimental
// DLL release. console-arcs reuses the Ep04 data folder.
func ExampleChapters() []ChapterEntry {
	return []ChapterEntry{
		{Branch: "oni-mod", DataFolder: "HigurashiEp01_Data", Archive: "experimental-drojf-dll-ep1.7z"},
		{Branch: "wata-mod", DataFolder: "HigurashiEp02_Data", Archive: "experimental-drojf-dll-ep2.7z"},
		{Branch: "tata-mod", DataFolder: "HigurashiEp03_Data", Archive: "experimental-drojf-dll-ep3.7z"},
		{Branch: "hima-mod", DataFolder: "HigurashiEp04_Data", Archive: "experimental-drojf-dll-ep4.7z"},
		{Branch: "mea-mod", DataFolder: "HigurashiEp05_Data", Archive: "experimental-drojf-dll-ep5.7z"},
		{Branch: "tsumi-mod", DataFolder: "HigurashiEp06_Data", Archive: "experimental-drojf-dll-ep6.7z"},
		{Branch: "mina-mod", DataFolder: "HigurashiEp07_Data", Archive: "experimental-drojf-dll-ep7.7z"},
		{Branch: "matsuri-mod", DataFolder: "HigurashiEp08_Data", Archive: "experimental-drojf-dll-ep8.7z"},
		{Branch: "console-arcs", DataFolder: "HigurashiEp04_Data", Archive: "experimental-drojf-dll-console.7z"},
	}
}

// Example returns a fully defaulted example configuration.
func Example() *Config {
	cfg := &Config{
		Version: 1,
		Tools: ToolsConfig{
			Builder: `C:\Program Files (x86)\Microsoft Visual Studio\2019\Community\MSBuild\Current\Bin\MSBuild.exe`,
		},
		Repository: RepositoryConfig{
			Path: `${HIGURASHI_ASSEMBLY_REPO}`,
		},
		Chapters: ExampleChapters(),
	}
	applyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists").
			WithContext("path", configPath).
			WithContext(errors.HintKey, "Use --force to overwrite it.").
			Build()
	}

	data, err := Marshal(Example())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to render example config").Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}

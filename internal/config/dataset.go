package config

// DatasetConfig holds per-dataset analysis overrides.
// Zero values mean "no override"; the global flag values apply.
type DatasetConfig struct {
	// Workers overrides the shard worker count for the dataset.
	Workers int `yaml:"workers,omitempty"`

	// ChunkSize overrides the lines-per-chunk read size.
	ChunkSize int `yaml:"chunk_size,omitempty"`

	// TopN overrides the ranking depth.
	TopN int `yaml:"top_n,omitempty"`

	// OutputDir overrides the per-category text file directory.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// File is the parsed configuration file.
// Defaults apply to every dataset; Datasets maps dataset paths (as given
// on the command line) to specific overrides.
type File struct {
	// Defaults holds settings applied to all datasets.
	Defaults DatasetConfig `yaml:"defaults"`

	// Datasets maps dataset paths to their specific configurations.
	Datasets map[string]DatasetConfig `yaml:"datasets"`
}

// Merge merges default config with dataset-specific overrides.
// Non-zero override values win.
func Merge(defaults, override DatasetConfig) DatasetConfig {
	result := defaults
	if override.Workers > 0 {
		result.Workers = override.Workers
	}
	if override.ChunkSize > 0 {
		result.ChunkSize = override.ChunkSize
	}
	if override.TopN > 0 {
		result.TopN = override.TopN
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	return result
}

// ForDataset returns the merged configuration for a dataset path.
// Falls back to defaults if no dataset-specific config exists.
func (f *File) ForDataset(path string) DatasetConfig {
	if f == nil {
		return DatasetConfig{}
	}
	if dc, ok := f.Datasets[path]; ok {
		return Merge(f.Defaults, dc)
	}
	return f.Defaults
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// repositoryFile is the YAML layout of the repository import file.
type repositoryFile struct {
	Repositories []repositoryEntry `yaml:"repositories"`
}

type repositoryEntry struct {
	URL      string      `yaml:"url"`
	Category *string     `yaml:"category"`
	Shows    showsConfig `yaml:"shows"`
}

// showsConfig uses pointers so that omitted keys can default to true.
type showsConfig struct {
	Issues       *bool `yaml:"issues"`
	PullRequests *bool `yaml:"pullRequests"`
	Releases     *bool `yaml:"releases"`
	Commits      *bool `yaml:"commits"`
}

func orTrue(b *bool) bool {
	return b == nil || *b
}

// LoadRepositoryFile reads the repository import file at path. Every entry
// must be a valid repository URL; the first invalid one fails the load.
func LoadRepositoryFile(path string) ([]model.RepositoryIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repository file: %w", err)
	}
	return ParseRepositoryFile(data)
}

// ParseRepositoryFile decodes the YAML import format.
func ParseRepositoryFile(data []byte) ([]model.RepositoryIdentity, error) {
	var file repositoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse repository file: %w", err)
	}

	identities := make([]model.RepositoryIdentity, 0, len(file.Repositories))
	for i, entry := range file.Repositories {
		id := model.ParseRepositoryIdentity(entry.URL)
		if !id.IsValid() {
			return nil, fmt.Errorf("repository %d (%q): %w", i+1, entry.URL, model.ErrInvalidRepositoryURL)
		}

		id.Category = entry.Category
		id.Preference = model.RepositoryPreference{
			ShowsIssues:       orTrue(entry.Shows.Issues),
			ShowsPullRequests: orTrue(entry.Shows.PullRequests),
			ShowsReleases:     orTrue(entry.Shows.Releases),
			ShowsCommits:      orTrue(entry.Shows.Commits),
		}
		identities = append(identities, id)
	}

	return identities, nil
}

package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const DefaultProfile = "default"

// Registry lists the reporting backends configured in an .emscfg file.
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.BackendProfile, error)
	GetProfile(ctx context.Context, name string) (domain.BackendProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.BackendProfile, error) {
	var profiles []domain.BackendProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, mapSection(section))
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (domain.BackendProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return domain.BackendProfile{}, fmt.Errorf("profile %s not found", name)
	}

	profile := mapSection(section)
	if profile.Host == "" {
		return domain.BackendProfile{}, fmt.Errorf("profile %s has no host", name)
	}
	return profile, nil
}

func mapSection(section *ini.Section) domain.BackendProfile {
	return domain.BackendProfile{
		Name:     section.Name(),
		Host:     strings.TrimRight(section.Key("host").String(), "/"),
		Language: section.Key("language").String(),
		Source:   domain.ProfileSourceFile,
	}
}

type staticRegistry struct {
	profile domain.BackendProfile
}

// NewStaticRegistry serves a single profile, used when no profiles file exists.
func NewStaticRegistry(host, language string) Registry {
	return &staticRegistry{profile: domain.BackendProfile{
		Name:     DefaultProfile,
		Host:     strings.TrimRight(host, "/"),
		Language: language,
		Source:   domain.ProfileSourceDefault,
	}}
}

func (s *staticRegistry) GetProfiles(_ context.Context) ([]domain.BackendProfile, error) {
	return []domain.BackendProfile{s.profile}, nil
}

func (s *staticRegistry) GetProfile(_ context.Context, name string) (domain.BackendProfile, error) {
	if name != "" && name != s.profile.Name {
		return domain.BackendProfile{}, fmt.Errorf("profile %s not found", name)
	}
	return s.profile, nil
}

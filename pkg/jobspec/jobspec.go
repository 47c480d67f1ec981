// Package jobspec loads the YAML job manifest describing one render: the
// product images, narration track, output target and per-job option
// overrides. Validation issues are aggregated so a caller can report every
// problem in one pass.
package jobspec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intro overrides the workspace intro config for one job.
type Intro struct {
	DurationSeconds float64 `yaml:"duration_s"`
	Image           string  `yaml:"image"`
	Narration       string  `yaml:"narration"`
}

// Job is one render described in a manifest file.
type Job struct {
	Images    []string `yaml:"images"`
	Narration string   `yaml:"narration"`
	Output    string   `yaml:"output"`

	Title  string `yaml:"title"`
	BuyURL string `yaml:"buy_url"`

	Resolution string `yaml:"resolution"`
	FPS        int    `yaml:"fps"`
	Quality    string `yaml:"quality"`

	Music bool   `yaml:"music"`
	Bed   string `yaml:"bed"`

	UseIntro bool  `yaml:"use_intro"`
	Intro    Intro `yaml:"intro"`

	ShortForm bool  `yaml:"short_form"`
	Seed      int64 `yaml:"seed"`
}

// Load reads and validates a manifest. When validation issues are found the
// returned error is of type ValidationErrors and the parsed job is still
// returned so callers can report every problem at once.
func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job file: %w", err)
	}
	if len(data) == 0 {
		return Job{}, errors.New("job file is empty")
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("parse YAML: %w", err)
	}

	if errs := job.Validate(); len(errs) > 0 {
		return job, errs
	}
	return job, nil
}

// Validate checks the manifest's internal consistency. File existence is the
// render pipeline's concern, not the loader's.
func (j Job) Validate() ValidationErrors {
	var errs ValidationErrors

	if len(j.Images) == 0 {
		errs = append(errs, ValidationError{Field: "images", Message: "at least one image is required"})
	}
	for i, image := range j.Images {
		if strings.TrimSpace(image) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("images[%d]", i),
				Message: "image path must not be blank",
			})
		}
	}
	if strings.TrimSpace(j.Narration) == "" {
		errs = append(errs, ValidationError{Field: "narration", Message: "narration is required"})
	}
	if strings.TrimSpace(j.Output) == "" {
		errs = append(errs, ValidationError{Field: "output", Message: "output is required"})
	}
	if j.FPS < 0 {
		errs = append(errs, ValidationError{Field: "fps", Message: "fps must not be negative"})
	}
	if q := strings.ToLower(strings.TrimSpace(j.Quality)); q != "" {
		switch q {
		case "low", "medium", "high", "ultra":
		default:
			errs = append(errs, ValidationError{
				Field:   "quality",
				Message: fmt.Sprintf("unknown quality %q (expected low, medium, high or ultra)", j.Quality),
			})
		}
	}
	if res := strings.TrimSpace(j.Resolution); res != "" && !strings.Contains(strings.ToLower(res), "x") {
		errs = append(errs, ValidationError{
			Field:   "resolution",
			Message: fmt.Sprintf("resolution %q is not in WxH form", j.Resolution),
		})
	}
	if j.UseIntro && strings.TrimSpace(j.Intro.Image) == "" {
		errs = append(errs, ValidationError{Field: "intro.image", Message: "intro requires an image"})
	}
	if j.Intro.DurationSeconds < 0 {
		errs = append(errs, ValidationError{Field: "intro.duration_s", Message: "intro duration must not be negative"})
	}

	return errs
}

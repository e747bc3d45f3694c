// Package export renders structured guides into standalone HTML documents.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paolopast/LangNerd/internal/pipeline"
	"github.com/paolopast/LangNerd/utils"
)

// Exporter writes one immutable HTML file per guide generation. File names
// are unique by construction, so concurrent exports for the same game never
// collide and no locking is needed.
type Exporter struct {
	outputDir  string
	publicPath string
	tmpl       *template.Template

	now func() time.Time
}

func NewExporter(outputDir, publicPath string) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", pipeline.ErrExportFailed, err)
	}
	if publicPath == "" {
		publicPath = "/generated"
	}
	tmpl, err := template.New("guide").Funcs(template.FuncMap{
		"addOne": func(i int) int { return i + 1 },
	}).Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &Exporter{
		outputDir:  outputDir,
		publicPath: publicPath,
		tmpl:       tmpl,
		now:        time.Now,
	}, nil
}

type documentData struct {
	Title            string
	Language         string
	GeneratedAt      string
	ElevatorPitch    template.HTML
	StoryOverview    template.HTML
	WorldSetting     template.HTML
	Relationships    template.HTML
	AdvancedInsights template.HTML
	MainCharacters   []characterData
	Missions         []missionData
	Trophies         []trophyData
	Sources          []pipeline.Source
}

type characterData struct {
	Name        string
	Role        template.HTML
	Description template.HTML
}

type missionData struct {
	Title    string
	Details  template.HTML
	Strategy template.HTML
}

type trophyData struct {
	Name        string
	Tier        string
	Description template.HTML
	Tips        template.HTML
}

// Export renders the guide and writes it under a fresh name. The rich-text
// fields were sanitized at the generation boundary and are embedded as-is;
// everything else goes through template escaping.
func (e *Exporter) Export(ctx context.Context, guide pipeline.Guide, sources []pipeline.Source, language string) (pipeline.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.DocumentRef{}, err
	}

	title := strings.TrimSpace(guide.GameTitle)
	if title == "" {
		title = "Guida videoludica"
	}
	if language == "" {
		language = "it"
	}

	data := documentData{
		Title:            title,
		Language:         language,
		GeneratedAt:      e.now().UTC().Format("2006-01-02 15:04 UTC"),
		ElevatorPitch:    template.HTML(guide.ElevatorPitch),
		StoryOverview:    template.HTML(guide.StoryOverview),
		WorldSetting:     template.HTML(guide.WorldSetting),
		Relationships:    template.HTML(guide.Relationships),
		AdvancedInsights: template.HTML(guide.AdvancedInsights),
		Sources:          sources,
	}
	for _, c := range guide.MainCharacters {
		data.MainCharacters = append(data.MainCharacters, characterData{
			Name: c.Name, Role: template.HTML(c.Role), Description: template.HTML(c.Description),
		})
	}
	for _, m := range guide.MissionsAndTips {
		data.Missions = append(data.Missions, missionData{
			Title: m.Title, Details: template.HTML(m.Details), Strategy: template.HTML(m.Strategy),
		})
	}
	for _, t := range guide.Trophies {
		data.Trophies = append(data.Trophies, trophyData{
			Name: t.Name, Tier: t.Tier, Description: template.HTML(t.Description), Tips: template.HTML(t.Tips),
		})
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return pipeline.DocumentRef{}, fmt.Errorf("%w: render: %v", pipeline.ErrExportFailed, err)
	}

	name := e.fileName(title)
	outPath := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return pipeline.DocumentRef{}, fmt.Errorf("%w: write %s: %v", pipeline.ErrExportFailed, outPath, err)
	}

	return pipeline.DocumentRef{
		Path: outPath,
		URL:  strings.TrimSuffix(e.publicPath, "/") + "/" + name,
	}, nil
}

// fileName builds slug_timestamp_uuid8.html: deterministic shape, unique
// per generation.
func (e *Exporter) fileName(title string) string {
	slug := utils.Slugify(title)
	if slug == "" {
		slug = "guide"
	}
	return fmt.Sprintf("%s_%s_%s.html", slug, e.now().UTC().Format("20060102150405"), uuid.New().String()[:8])
}

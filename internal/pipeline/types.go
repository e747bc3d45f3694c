package pipeline

import "context"

// Mode selects the branch of the pipeline a request flows through.
type Mode string

const (
	ModeQA    Mode = "qa"
	ModeGuide Mode = "guide"
)

// Request is one incoming question or guide topic. Immutable once accepted.
type Request struct {
	Question string `json:"question"`
	Game     string `json:"game,omitempty"`
	Focus    string `json:"focus,omitempty"`
	Extra    string `json:"extra,omitempty"`
	Language string `json:"language,omitempty"`
}

// Plan is the planner's output: the decided mode plus the ordered search
// queries derived for it.
type Plan struct {
	Mode     Mode
	Language string
	Queries  []string
}

// Source is one external reference backing an answer or guide. URL is the
// unique key within one result's source list.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Mission is one guide entry; Title is the key within the guide.
type Mission struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Strategy string `json:"strategy"`
}

// Trophy is one achievement entry; Name is the key within the guide.
type Trophy struct {
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
	Tips        string `json:"tips"`
}

// Character is one main-character entry; Name is the key within the guide.
type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Guide is the structured guide record. Every field except GameTitle is
// optional; absent sections are omitted from the render, not blanked.
type Guide struct {
	GameTitle        string      `json:"game_title"`
	ElevatorPitch    string      `json:"elevator_pitch,omitempty"`
	StoryOverview    string      `json:"story_overview,omitempty"`
	WorldSetting     string      `json:"world_setting,omitempty"`
	MainCharacters   []Character `json:"main_characters,omitempty"`
	Relationships    string      `json:"relationships,omitempty"`
	MissionsAndTips  []Mission   `json:"missions_and_tips,omitempty"`
	Trophies         []Trophy    `json:"trophies,omitempty"`
	AdvancedInsights string      `json:"advanced_insights,omitempty"`
}

// QAResult is the terminal payload of the qa branch.
type QAResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Mode    Mode     `json:"mode"`
	Caveat  string   `json:"caveat,omitempty"`
}

// GuideResult is the terminal payload of the guide branch. The document is
// written before the result is returned; ExportError flags a failed export
// without dropping the guide data.
type GuideResult struct {
	Guide        Guide    `json:"guide"`
	Sources      []Source `json:"sources"`
	DocumentPath string   `json:"document_path,omitempty"`
	DocumentURL  string   `json:"document_url,omitempty"`
	Mode         Mode     `json:"mode"`
	Caveat       string   `json:"caveat,omitempty"`
	ExportError  string   `json:"export_error,omitempty"`
}

// DocumentRef points at one exported document.
type DocumentRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// DocumentExporter renders a guide into a standalone, fetchable document.
type DocumentExporter interface {
	Export(ctx context.Context, guide Guide, sources []Source, language string) (DocumentRef, error)
}

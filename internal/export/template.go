package export

// documentTemplate mirrors the LangNerd export look: dark theme, one block
// per present section, cards for list entries, sources appendix.
const documentTemplate = `<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8" />
<title>{{.Title}} - LangNerd</title>
<style>
  body { font-family: 'Segoe UI', Arial, sans-serif; background-color: #05070f; color: #f5f6fb; margin: 0; padding: 2rem; }
  h1 { color: #63d2ff; }
  h2 { color: #ff914d; border-bottom: 1px solid rgba(255,255,255,0.1); padding-bottom: .3rem; }
  .meta { color: #9fb3ff; font-size: 0.9rem; margin-bottom: 2rem; }
  .block { margin-bottom: 1.5rem; }
  ul { padding-left: 1.3rem; }
  li { margin-bottom: .5rem; }
  .muted { color: #a3b2d4; }
  .card { border: 1px solid rgba(255,255,255,0.1); border-radius: 12px; padding: 1rem; margin-bottom: 1rem; }
  .tier { display: inline-block; border-radius: 8px; padding: .1rem .5rem; font-size: .8rem; text-transform: uppercase; margin-left: .5rem; background: #2a2f45; }
  .tier.bronze { background: #7a4a12; }
  .tier.silver { background: #6b7280; }
  .tier.gold { background: #a16207; }
  .tier.platinum { background: #155e75; }
  a { color: #63d2ff; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Generated with LangNerd &bull; {{.GeneratedAt}} &bull; {{.Language}}</div>
{{- if .ElevatorPitch}}
<section class="block"><h2>Elevator pitch</h2>{{.ElevatorPitch}}</section>
{{- end}}
{{- if .StoryOverview}}
<section class="block"><h2>Story overview</h2>{{.StoryOverview}}</section>
{{- end}}
{{- if .WorldSetting}}
<section class="block"><h2>World &amp; setting</h2>{{.WorldSetting}}</section>
{{- end}}
{{- if .MainCharacters}}
<section class="block"><h2>Main characters</h2>
{{- range .MainCharacters}}
<div class="card"><p><strong>{{.Name}}</strong></p>{{if .Role}}<p>{{.Role}}</p>{{end}}{{if .Description}}{{.Description}}{{end}}</div>
{{- end}}
</section>
{{- end}}
{{- if .Relationships}}
<section class="block"><h2>Relationships &amp; factions</h2>{{.Relationships}}</section>
{{- end}}
{{- if .Missions}}
<section class="block"><h2>Missions &amp; strategies</h2>
{{- range .Missions}}
<div class="card"><p><strong>{{.Title}}</strong></p>{{if .Details}}{{.Details}}{{end}}{{if .Strategy}}{{.Strategy}}{{end}}</div>
{{- end}}
</section>
{{- end}}
{{- if .Trophies}}
<section class="block"><h2>Trophies</h2>
{{- range .Trophies}}
<div class="card"><p><strong>{{.Name}}</strong>{{if .Tier}}<span class="tier {{.Tier}}">{{.Tier}}</span>{{end}}</p>{{if .Description}}{{.Description}}{{end}}{{if .Tips}}{{.Tips}}{{end}}</div>
{{- end}}
</section>
{{- end}}
{{- if .AdvancedInsights}}
<section class="block"><h2>Advanced insights</h2>{{.AdvancedInsights}}</section>
{{- end}}
{{- if .Sources}}
<section class="block"><h2>Sources</h2>
<ul>
{{- range $i, $s := .Sources}}
<li>[{{addOne $i}}] <a href="{{$s.URL}}" target="_blank" rel="noreferrer">{{$s.Title}}</a>{{if $s.Snippet}} <span class="muted">{{$s.Snippet}}</span>{{end}}</li>
{{- end}}
</ul>
</section>
{{- end}}
</body>
</html>
`

package cli

const statusTemplate = `Status:    {{.Status}}
Online:    {{if .Online}}yes{{else}}no{{end}}
Pending:   {{.Pending}} change(s)
Last sync: {{if .LastSync.IsZero}}never{{else}}{{.LastSync.UTC.Format "2006-01-02 15:04:05 UTC"}}{{end}}
`

const queueListTemplate = `
{{- if eq (len .) 0 -}}
Offline queue is empty.
{{ else -}}
{{len .}} queued change(s):
{{range $i, $a := .}}
{{- $i | inc}}. {{$a.Kind}} {{$a.Payload.Kind}} {{$a.Payload.ID}} (queued {{$a.EnqueuedAt.UTC.Format "2006-01-02 15:04:05"}}, id {{$a.ID}})
     {{payload $a}}
{{end -}}
{{end -}}
`

const entriesListTemplate = `
{{- if eq (len .) 0 -}}
No entries found.
{{ else -}}
{{range .}}
{{- .ID}}  {{.DueDate}}  {{money .Amount}}  paid {{money .PaidAmount}}  {{.Description}}
{{end -}}
{{end -}}
`

const goalsListTemplate = `
{{- if eq (len .) 0 -}}
No goals found.
{{ else -}}
{{range .}}
{{- .ID}}  {{.Name}}  target {{money .TargetAmount}}{{if .TargetDate}} by {{.TargetDate}}{{end}}  saved {{money (saved .)}}
{{end -}}
{{end -}}
`

const namedListTemplate = `
{{- if eq (len .) 0 -}}
Nothing found.
{{ else -}}
{{range .}}
{{- .ID}}  {{.Name}}
{{end -}}
{{end -}}
`

const snapshotsListTemplate = `
{{- if eq (len .) 0 -}}
Nothing found.
{{ else -}}
{{range .}}
{{- .ID}}  v{{.Version}}  {{describe .}}
{{end -}}
{{end -}}
`

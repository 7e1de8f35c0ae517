package chi

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

// pageData feeds the chat page template.
type pageData struct {
	Query  string
	Answer string
	Error  string
}

var pageTemplate = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AlRashid Assistant</title>
<style>
 body { font-family: system-ui, sans-serif; max-width: 640px; margin: 3rem auto; padding: 0 1rem; color: #222; }
 h1 { font-size: 1.4rem; }
 form { display: flex; gap: .5rem; margin: 1.5rem 0; }
 input[type=text] { flex: 1; padding: .5rem; font-size: 1rem; }
 button { padding: .5rem 1rem; font-size: 1rem; cursor: pointer; }
 .answer { background: #f4f4f4; border-radius: 6px; padding: 1rem; white-space: pre-wrap; }
 .error { color: #a00; }
</style>
</head>
<body>
<h1>AlRashid Restaurant Assistant</h1>
<form method="post" action="/chat">
<input type="text" name="query" placeholder="Ask about our menu or hours" value="{{.Query}}" autofocus>
<button type="submit">Ask</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Answer}}<div class="answer">{{.Answer}}</div>{{end}}
</body>
</html>
`))

func renderPage(w http.ResponseWriter, logger *zap.Logger, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("render page", zap.Error(err))
	}
}

// Package http provides HTTP handlers for the proxy routing surface.
package http

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

// indexPageTemplate is the landing page: a single search box that resolves
// queries through /api/search and navigates to the returned proxy route.
var indexPageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>webproxy</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;background:#111827;color:#f9fafb;font:16px/1.5 -apple-system,"Segoe UI",Roboto,sans-serif}
main{width:min(560px,90vw);text-align:center}
h1{font-weight:600;letter-spacing:.05em}
form{display:flex;gap:8px;margin-top:24px}
input{flex:1;padding:12px 16px;border:1px solid #4b5563;border-radius:8px;background:#1f2937;color:#f9fafb;font-size:16px}
button{padding:12px 24px;border:none;border-radius:8px;background:#2563eb;color:#fff;font-size:16px;cursor:pointer}
button:hover{background:#1d4ed8}
p.hint{color:#9ca3af;font-size:14px}
</style>
</head>
<body>
<main>
<h1>webproxy</h1>
<form id="search-form">
<input id="search-input" type="text" placeholder="Search or enter URL" autocomplete="off" autofocus>
<button type="submit">Go</button>
</form>
<p class="hint">Enter a URL, a domain, or a search query.</p>
</main>
<script>
document.getElementById('search-form').addEventListener('submit',function(e){
	e.preventDefault();
	var q=document.getElementById('search-input').value.trim();
	if(!q){return;}
	fetch('/api/search',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({query:q})})
		.then(function(r){return r.json();})
		.then(function(data){if(data.url){window.location.href=data.url;}});
});
</script>
</body>
</html>
`))

// errorPageTemplate renders proxy failures as a navigable HTML page instead
// of a bare status code, with a link back to the landing page.
var errorPageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;background:#111827;color:#f9fafb;font:16px/1.5 -apple-system,"Segoe UI",Roboto,sans-serif}
main{width:min(560px,90vw);text-align:center}
h1{font-weight:600}
p{color:#9ca3af}
a{color:#60a5fa}
</style>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to start</a></p>
</main>
</body>
</html>
`))

// errorPageData feeds errorPageTemplate.
type errorPageData struct {
	Title   string
	Message string
}

// renderErrorPage writes an HTML error page with the given status.
func renderErrorPage(c *gin.Context, status int, title, message string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = errorPageTemplate.Execute(c.Writer, errorPageData{Title: title, Message: message})
}

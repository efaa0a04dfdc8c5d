package rewrite

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// overlayID marks the injected control bar so a document that passes through
// the rewriter twice is not decorated twice.
const overlayID = "webproxy-overlay"

// overlayHTML is the fixed-markup control overlay appended to <body> of every
// rewritten page: search box, refresh, fullscreen, and the live user count.
// The companion script wires the controls to the proxy API and the presence
// websocket. Cosmetic by contract; a page that strips it still navigates fine.
const overlayHTML = `
<div id="webproxy-overlay">
<style>
#webproxy-overlay{position:fixed;bottom:0;left:0;right:0;z-index:2147483647;display:flex;align-items:center;gap:8px;padding:6px 12px;background:rgba(17,24,39,.92);color:#f9fafb;font:14px/1.4 -apple-system,"Segoe UI",Roboto,sans-serif}
#webproxy-overlay input{flex:1;min-width:120px;padding:6px 10px;border:1px solid #4b5563;border-radius:6px;background:#111827;color:#f9fafb}
#webproxy-overlay button{padding:6px 12px;border:none;border-radius:6px;background:#2563eb;color:#fff;cursor:pointer}
#webproxy-overlay button:hover{background:#1d4ed8}
#webproxy-overlay .webproxy-count{color:#9ca3af;white-space:nowrap}
</style>
<form id="webproxy-search-form"><input id="webproxy-search-input" type="text" placeholder="Search or enter URL" autocomplete="off"></form>
<button type="button" id="webproxy-refresh" title="Reload page">Refresh</button>
<button type="button" id="webproxy-fullscreen" title="Toggle fullscreen">Fullscreen</button>
<span class="webproxy-count">online: <span id="webproxy-online">-</span></span>
</div>
<script>
(function(){
	var form=document.getElementById('webproxy-search-form');
	var input=document.getElementById('webproxy-search-input');
	form.addEventListener('submit',function(e){
		e.preventDefault();
		var q=input.value.trim();
		if(!q){return;}
		fetch('/api/search',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({query:q})})
			.then(function(r){return r.json();})
			.then(function(data){if(data.url){window.location.href=data.url;}});
	});
	document.getElementById('webproxy-refresh').addEventListener('click',function(){window.location.reload();});
	document.getElementById('webproxy-fullscreen').addEventListener('click',function(){
		if(document.fullscreenElement){document.exitFullscreen();}else{document.documentElement.requestFullscreen();}
	});
	try{
		var proto=window.location.protocol==='https:'?'wss://':'ws://';
		var ws=new WebSocket(proto+window.location.host+'/ws/presence');
		ws.onmessage=function(ev){
			var msg=JSON.parse(ev.data);
			document.getElementById('webproxy-online').textContent=msg.online;
		};
	}catch(e){}
})();
</script>
`

// injectOverlay appends the overlay nodes to a <body> element unless it
// already carries one.
func (r *Rewriter) injectOverlay(body *html.Node) {
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			for _, attr := range c.Attr {
				if attr.Key == "id" && attr.Val == overlayID {
					return
				}
			}
		}
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(overlayHTML), context)
	if err != nil {
		r.logger.Warn("overlay fragment parse failed", slog.Any("error", err))
		return
	}

	for _, n := range nodes {
		body.AppendChild(n)
	}
}

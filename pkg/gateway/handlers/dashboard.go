package handlers

import "net/http"

// DashboardHandler serves the dev portal page: live video, event log and
// manual controls.
type DashboardHandler struct{}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Narrate</title>
<style>
  body { font-family: sans-serif; margin: 1rem; background: #111; color: #eee; }
  img { max-width: 640px; width: 100%; border: 1px solid #444; }
  #log { font-family: monospace; font-size: 0.8rem; height: 14rem; overflow-y: auto;
         background: #000; padding: 0.5rem; border: 1px solid #444; }
  button { margin: 0.25rem; padding: 0.5rem 1rem; }
  #narration { font-size: 1.2rem; min-height: 2rem; }
</style>
</head>
<body>
<h1>Narrate</h1>
<img src="/video_feed" alt="live feed">
<p id="status">idle</p>
<p id="narration"></p>
<div>
  <button onclick="fetch('/trigger',{method:'POST'})">Capture</button>
  <button onclick="fetch('/speak',{method:'POST'})">Replay</button>
  <button onclick="fetch('/stop_tts',{method:'POST'})">Stop speech</button>
</div>
<div id="log"></div>
<script>
const log = document.getElementById('log');
const es = new EventSource('/events');
es.onmessage = (m) => {
  const ev = JSON.parse(m.data);
  if (ev.type === 'status') document.getElementById('status').textContent = ev.data;
  if (ev.type === 'inference_text') document.getElementById('narration').textContent = ev.data.text;
  const line = document.createElement('div');
  line.textContent = m.data;
  log.prepend(line);
  while (log.childElementCount > 200) log.removeChild(log.lastChild);
};
</script>
</body>
</html>
`

func (h DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, notFoundError())
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

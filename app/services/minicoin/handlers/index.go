package handlers

import (
	"context"
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>MiniCoin API</title></head>
<body>
<h1>MiniCoin API</h1>
<p>Milestone size: {{.MilestoneSize}} coins. Blocks: {{.Blocks}}.</p>
<ul>
  <li><b>POST</b> /v1/join <code>{ "username": "alice" }</code></li>
  <li><b>POST</b> /v1/buy <code>{ "username": "alice", "amount": 100 }</code></li>
  <li><b>POST</b> /v1/send <code>{ "from_user": "alice", "to": "bob", "amount": 10 }</code></li>
  <li><b>GET</b> /v1/wallet/{username}</li>
  <li><b>GET</b> /v1/chain</li>
  <li><b>GET</b> /v1/chain/verify</li>
  <li><b>GET</b> /v1/tx/pending</li>
  <li><b>GET</b> /v1/accounts</li>
  <li><b>GET</b> /v1/events (websocket)</li>
</ul>
</body>
</html>
`))

// index renders the page listing the endpoints of the api.
type index struct {
	milestoneSize func() uint64
	blocks        func() int
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	data := struct {
		MilestoneSize uint64
		Blocks        int
	}{
		MilestoneSize: ig.milestoneSize(),
		Blocks:        ig.blocks(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	return indexTemplate.Execute(w, data)
}

package server

import (
	"html/template"
	"net/http"

	"github.com/streamcat/lolomo/internal/config"
)

var graphiqlPage = template.Must(template.New("graphiql").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css">
</head>
<body style="margin: 0;">
  <div id="graphiql" style="height: 100vh;" data-endpoint="{{.Endpoint}}"></div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const root = document.getElementById('graphiql');
    const fetcher = GraphiQL.createFetcher({ url: root.dataset.endpoint });
    ReactDOM.createRoot(root).render(React.createElement(GraphiQL, { fetcher }));
  </script>
</body>
</html>
`))

// GraphiQL serves the in-browser IDE pointed at endpoint.
func GraphiQL(title, endpoint string) http.Handler {
	data := struct {
		Title    string
		Endpoint string
	}{title, endpoint}

	logger := config.GetLogger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := graphiqlPage.Execute(w, data); err != nil {
			logger.Error().Err(err).Msg("Failed to render GraphiQL")
		}
	})
}

package webapp

import (
	"encoding/json"
	"html/template"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"

	"github.com/demowebapp/browser-contract-tests/servicedef"
)

// The page script is plain ES5 with XMLHttpRequest so that Internet Explorer 11 can run it.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="X-UA-Compatible" content="IE=edge">
<title>Demo Web App</title>
</head>
<body>
<h1 id="{{.HeaderID}}">{{.InitialText}}</h1>
<button id="{{.ButtonID}}" type="button">Click me</button>
<script>
(function () {
	var button = document.getElementById({{.ButtonID}});
	var header = document.getElementById({{.HeaderID}});
{{- if not .Defect}}
	button.onclick = function () {
		var xhr = new XMLHttpRequest();
		xhr.open("POST", {{.ClicksPath}}, true);
		xhr.onreadystatechange = function () {
			if (xhr.readyState === 4 && xhr.status === 200) {
				header.textContent = JSON.parse(xhr.responseText).message;
			}
		};
		xhr.send();
	};
{{- end}}
})();
</script>
</body>
</html>
`))

type pageParams struct {
	ButtonID    string
	HeaderID    string
	InitialText string
	ClicksPath  string
	Defect      bool
}

type app struct {
	defect  bool
	clicks  int64
	loggers ldlog.Loggers
}

func newApp(defect bool, loggers ldlog.Loggers) *app {
	return &app{defect: defect, loggers: loggers}
}

func (a *app) handler() http.Handler {
	router := mux.NewRouter()

	// readiness checks may use any path
	router.Methods(http.MethodHead).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.HandleFunc("/", a.servePage).Methods(http.MethodGet)
	router.HandleFunc(servicedef.HealthPath, a.serveHealth).Methods(http.MethodGet)
	router.HandleFunc(servicedef.ClicksPath, a.handleClick).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

func (a *app) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTemplate.Execute(w, pageParams{
		ButtonID:    servicedef.ButtonID,
		HeaderID:    servicedef.HeaderID,
		InitialText: servicedef.InitialHeaderText,
		ClicksPath:  servicedef.ClicksPath,
		Defect:      a.defect,
	})
	if err != nil {
		a.loggers.Errorf("Failed to render page: %s", err)
	}
}

func (a *app) serveHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, servicedef.HealthResponse{Status: "ok", Clicks: int(atomic.LoadInt64(&a.clicks))})
}

func (a *app) handleClick(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt64(&a.clicks, 1)
	a.loggers.Debugf("Button clicked (%d)", n)
	writeJSON(w, servicedef.ClickResponse{Message: servicedef.ClickedText, Count: int(n)})
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(value)
}

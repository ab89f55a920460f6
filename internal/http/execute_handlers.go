package httpx

import (
	"encoding/json"
	"net/http"

	"codepair/internal/store"
)

// ExecuteAPI mocks code execution: JavaScript runs client-side, other
// supported languages return canned output until a real runner is wired in.
type ExecuteAPI struct{}

type executeReq struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type executeResp struct {
	Output         string `json:"output"`
	Error          string `json:"error"`
	ExecuteLocally bool   `json:"executeLocally"`
}

// Execute handles POST /execute.
func (a *ExecuteAPI) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var resp executeResp
	switch req.Language {
	case store.LangJavaScript:
		resp = executeResp{ExecuteLocally: true}
	case store.LangPython:
		resp = executeResp{Output: "[Mock execution] Python output:\nHello World\n(Real execution pending integration)"}
	case store.LangCPP:
		resp = executeResp{Output: "[Mock execution] C++ output:\nHello World\n(Real execution pending integration)"}
	default:
		resp = executeResp{Error: "Unsupported language"}
	}
	writeJSON(w, resp)
}

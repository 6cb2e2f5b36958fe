package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// BuildInfo is stamped into the binary with ldflags.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// withDefaults fills unset fields for local builds.
func (b BuildInfo) withDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.GitCommit == "" {
		b.GitCommit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "unknown"
	}
	return b
}

type versionResponse struct {
	Version     string `json:"version"`
	GitCommit   string `json:"git_commit"`
	BuildDate   string `json:"build_date"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
}

// VersionHandler serves build metadata at /version.
func VersionHandler(info BuildInfo, environment string) http.Handler {
	info = info.withDefaults()
	response := versionResponse{
		Version:     info.Version,
		GitCommit:   info.GitCommit,
		BuildDate:   info.BuildDate,
		GoVersion:   runtime.Version(),
		Environment: environment,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	})
}

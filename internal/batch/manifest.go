package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one processed image in the output manifest.
type ManifestEntry struct {
	Name    string `json:"name"`
	STLFile string `json:"stl_file"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to the output directory,
// pairing each job with its Result.
func WriteManifest(path string, jobs []Job, results []Result) error {
	entries := make([]ManifestEntry, len(jobs))
	for i, job := range jobs {
		entries[i] = ManifestEntry{
			Name:    job.Name,
			STLFile: job.Name + ".stl",
			Success: results[i].Success,
			Error:   results[i].Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

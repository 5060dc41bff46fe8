package topics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Artifact filenames inside the model directory.
const (
	dictionaryFile = "dictionary.json"
	tfidfFile      = "tfidf.json"
	ldaFile        = "lda.json"
	clusterFile    = "cluster_model.json"
	labelsFile     = "topic_labels.json"
)

// ErrModelNotFound is returned when trained artifacts are absent. Callers
// treat it as "run training first", not as a failure.
var ErrModelNotFound = errors.New("topic model artifacts not found")

// ArtifactStore persists trained topic model artifacts under one
// filesystem directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the model directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// SaveLDA persists the dictionary, TF-IDF weights and fitted LDA model.
func (s *ArtifactStore) SaveLDA(dict *Dictionary, tfidf *TFIDF, model *LDA) error {
	if err := s.writeJSON(dictionaryFile, dict); err != nil {
		return err
	}
	if err := s.writeJSON(tfidfFile, tfidf); err != nil {
		return err
	}
	return s.writeJSON(ldaFile, model)
}

// LoadLDA loads the LDA artifacts; ErrModelNotFound if any are missing.
func (s *ArtifactStore) LoadLDA() (*Dictionary, *TFIDF, *LDA, error) {
	var dict Dictionary
	if err := s.readJSON(dictionaryFile, &dict); err != nil {
		return nil, nil, nil, err
	}
	var tfidf TFIDF
	if err := s.readJSON(tfidfFile, &tfidf); err != nil {
		return nil, nil, nil, err
	}
	var model LDA
	if err := s.readJSON(ldaFile, &model); err != nil {
		return nil, nil, nil, err
	}
	return &dict, &tfidf, &model, nil
}

// SaveClusters persists the fitted embedding clusterer.
func (s *ArtifactStore) SaveClusters(model *ClusterModel) error {
	return s.writeJSON(clusterFile, model)
}

// LoadClusters loads the clusterer; ErrModelNotFound if absent.
func (s *ArtifactStore) LoadClusters() (*ClusterModel, error) {
	var model ClusterModel
	if err := s.readJSON(clusterFile, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// LoadLabels reads the curated topic-id to display-name map. The file is
// maintained by hand after each training run; a missing file just means no
// curation has happened yet.
func (s *ArtifactStore) LoadLabels() map[int]string {
	raw := map[string]string{}
	if err := s.readJSON(labelsFile, &raw); err != nil {
		return map[int]string{}
	}
	labels := make(map[int]string, len(raw))
	for k, v := range raw {
		if id, err := strconv.Atoi(k); err == nil {
			labels[id] = v
		}
	}
	return labels
}

// LabelsPath returns the curated label file location, for operator logs.
func (s *ArtifactStore) LabelsPath() string {
	return filepath.Join(s.dir, labelsFile)
}

func (s *ArtifactStore) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

func (s *ArtifactStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrModelNotFound
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

package topics

import (
	"math"
)

// Default clustering parameters.
const (
	DefaultClusterEps    = 0.35
	DefaultClusterMinPts = 3
)

// ClusterModel is the fitted embedding clusterer: one centroid per
// discovered cluster. Documents farther than Eps (cosine distance) from
// every centroid predict the outlier cluster, id -1.
type ClusterModel struct {
	Epsilon   float64           `json:"epsilon"`
	Centroids map[int][]float64 `json:"centroids"`
}

// FitClusters runs density-based clustering (DBSCAN, cosine distance) over
// document embeddings. Returns the fitted model and the per-document
// cluster labels, -1 for outliers.
func FitClusters(vectors [][]float64, eps float64, minPts int) (*ClusterModel, []int) {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -2 // unvisited
	}

	neighbors := func(i int) []int {
		var out []int
		for j := 0; j < n; j++ {
			if cosineDistance(vectors[i], vectors[j]) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != -2 {
			continue
		}
		seed := neighbors(i)
		if len(seed) < minPts {
			labels[i] = -1
			continue
		}

		labels[i] = cluster
		queue := append([]int{}, seed...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == -1 {
				labels[j] = cluster
			}
			if labels[j] != -2 {
				continue
			}
			labels[j] = cluster
			reach := neighbors(j)
			if len(reach) >= minPts {
				queue = append(queue, reach...)
			}
		}
		cluster++
	}

	model := &ClusterModel{Epsilon: eps, Centroids: map[int][]float64{}}
	counts := map[int]int{}
	for i, label := range labels {
		if label < 0 {
			continue
		}
		centroid := model.Centroids[label]
		if centroid == nil {
			centroid = make([]float64, len(vectors[i]))
			model.Centroids[label] = centroid
		}
		for d := range vectors[i] {
			centroid[d] += vectors[i][d]
		}
		counts[label]++
	}
	for label, centroid := range model.Centroids {
		for d := range centroid {
			centroid[d] /= float64(counts[label])
		}
	}
	return model, labels
}

// Predict assigns one embedding to its nearest cluster. Returns the
// cluster id and a [0,1] confidence (cosine similarity to the centroid);
// embeddings outside Epsilon of every centroid go to the outlier cluster
// with confidence 0.
func (m *ClusterModel) Predict(vector []float64) (int, float64) {
	best := -1
	bestSim := -1.0
	for label, centroid := range m.Centroids {
		sim := cosineSimilarity(vector, centroid)
		if sim > bestSim || (sim == bestSim && (best == -1 || label < best)) {
			best, bestSim = label, sim
		}
	}
	if best == -1 || 1-bestSim > m.Epsilon {
		return -1, 0
	}
	return best, bestSim
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cosineDistance(a, b []float64) float64 {
	return 1 - cosineSimilarity(a, b)
}

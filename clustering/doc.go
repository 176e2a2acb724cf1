// Package clustering re-partitions speaker embeddings with spectral
// clustering over a k-nearest-neighbour graph.
//
// Vectors are L2 normalized, connected to their nearest neighbours, embedded
// with the eigenvectors of the normalized graph Laplacian and finally grouped
// with seeded k-means. For identical input the partition and the label
// strings are identical between runs.
package clustering

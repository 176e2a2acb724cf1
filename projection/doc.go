// Package projection maps speaker embeddings to 2-D points with exact t-SNE.
//
// Vectors are L2 normalized first, so the layout reflects cosine geometry.
// The embedding is seeded and therefore reproducible for identical input.
// Exact t-SNE is quadratic in the number of points, which is fine for the
// few hundred segments a recording produces.
package projection

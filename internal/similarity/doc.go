// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package similarity detects visually similar and near-duplicate images
// by comparing embedding vectors with cosine similarity.
//
// Every unordered pair in a batch is compared (N is at most 12, so the
// O(N^2) sweep is at most 66 comparisons) and classified:
//
//   - DUPLICATE: similarity at or above the duplicate threshold (0.92)
//   - RELATED:   similarity at or above the related threshold (0.80)
//   - DISTINCT:  everything below; discarded to bound output size
//
// Duplicate groups are the connected components of the graph whose edges
// are DUPLICATE pairs, computed with union-find. RELATED pairs are
// retained for reporting and for the ordering engine's diversity
// penalty, but never merge groups. Transitivity is intentional: if A-B
// and B-C are duplicates, A, B and C form one group even when A-C alone
// falls below the threshold.
//
// A zero-norm embedding makes cosine similarity undefined; such pairs
// are coerced to similarity 0 (DISTINCT) and logged at warn level
// rather than propagating NaN. This is a policy choice, not mathematics.
package similarity

// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package carousel orders a batch of scored images for display.
//
// The ordering balances three competing objectives: surface the highest
// quality content early, avoid placing near-duplicate images next to
// each other, and lead with exactly one hero image.
//
// # Algorithm
//
// Greedy interleaving with a diversity penalty:
//
//  1. The hero is the highest composite-quality image (ties: larger
//     pixel count, then smallest id) and always takes position 1.
//  2. Within each duplicate group, every member except the group's best
//     representative is demoted: it is still placed, but below all
//     non-demoted candidates so the best version of a shot leads.
//  3. Remaining positions are filled one at a time with the candidate
//     maximizing effective score = composite - penalty * similarity to
//     the image just placed (similarity counts only for RELATED or
//     DUPLICATE pairs). Adjacent duplicates are discouraged, not
//     forbidden: with no better option a duplicate still gets placed.
//  4. Ties break by composite score, then id.
//
// The result is always a permutation of the input and is deterministic
// for a fixed input set regardless of iteration order. The greedy pass
// is a heuristic, not a proven optimum of the joint quality/diversity
// objective; it is cheap, explainable, and stable at N <= 12.
package carousel

// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

/*
Package api provides the HTTP surface of the optimizer using the chi
router.

Endpoints:

	POST   /api/v1/sessions                      create a session
	GET    /api/v1/sessions/{sessionID}          session details
	DELETE /api/v1/sessions/{sessionID}          delete a session
	POST   /api/v1/sessions/{sessionID}/images   register images
	POST   /api/v1/analyze                       analyze a session's images
	GET    /api/v1/health                        liveness and stats
	GET    /metrics                              Prometheus metrics

Every response uses the APIResponse envelope with a status, payload,
metadata block, and structured error. Analysis responses are cached per
session and image set; re-analyzing an unchanged session is served from
cache with the cached flag set in the metadata.
*/
package api

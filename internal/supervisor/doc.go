// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

/*
Package supervisor builds the suture supervision tree for the server
process.

The tree has two layers under the root:

  - api: the HTTP server
  - maintenance: the session and cache janitors

A crash in a maintenance janitor restarts only that layer; the API keeps
serving. Supervisor events are logged through sutureslog into the
application's zerolog output.
*/
package supervisor

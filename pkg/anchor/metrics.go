// Copyright (c) 2025, The Theme Radar Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package anchor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fingerprintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anchor_fingerprints_total",
			Help: "Total number of bundle fingerprint attempts by outcome",
		},
		[]string{"kind", "result"},
	)

	fingerprintDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anchor_fingerprint_duration_seconds",
			Help:    "Time to resolve, snapshot and hash one bundle",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	bundleFiles = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "anchor_bundle_files",
			Help:    "Number of files per fingerprinted bundle",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)

	bundleBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "anchor_bundle_bytes",
			Help:    "Total content bytes per fingerprinted bundle",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anchor_verifications_total",
			Help: "Total number of fingerprint verifications by outcome",
		},
		[]string{"result"},
	)
)

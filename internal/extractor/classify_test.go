// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/isograph/internal/model"
)

func TestClassifyEntityClass(t *testing.T) {
	cases := []struct {
		path string
		want model.EntityClass
	}{
		{"internal/store/store.go", model.ClassCode},
		{"internal/store/store_test.go", model.ClassTest},
		{"pkg/util/helper_test.py", model.ClassTest},
		{"src/components/button.test.ts", model.ClassTest},
		{"src/components/Button.tsx", model.ClassCode},
		{"com/acme/WidgetTest.java", model.ClassTest},
		{"tests/fixtures/sample.go", model.ClassTest},
		{"src/tests/sample.go", model.ClassTest},
		{"src/contest/winner.go", model.ClassCode},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyEntityClass(c.path), c.path)
	}
}

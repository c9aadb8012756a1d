/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package leadgrid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"plumber", "bathroom"}, Tokenize("Need a plumber for my bathroom"))
	assert.Equal(t, []string{"web", "development"}, Tokenize("Web development"))
	assert.Equal(t, []string{"ac", "repair"}, Tokenize("AC repair, AC REPAIR!"))
	assert.Empty(t, Tokenize("a an the"))
	assert.Empty(t, Tokenize(""))
}

func TestTokenPattern(t *testing.T) {
	pattern := TokenPattern("Web development")
	assert.Equal(t, "(web|development)", pattern)

	re := regexp.MustCompile("(?i)" + pattern)
	assert.True(t, re.MatchString("Website Development Service"))
	assert.True(t, re.MatchString("WEB DESIGN"))
	assert.False(t, re.MatchString("Plumbing"))
}

func TestTokenPatternAlwaysCompiles(t *testing.T) {
	pattern := TokenPattern("c++ (tutoring) 24x7 :: $$$")
	_, err := regexp.Compile(pattern)
	assert.NoError(t, err)
	assert.Equal(t, "(tutoring|24x7)", pattern)
}

func TestTokenPatternEmpty(t *testing.T) {
	assert.Equal(t, "", TokenPattern("of the a"))
	assert.Equal(t, "", TokenPattern(""))
}

func TestSortedKeywordSet(t *testing.T) {
	set := map[string]bool{"Plumbing Services": true, "Bathroom Fittings": true, "AC Repair": true}
	assert.Equal(t, []string{"AC Repair", "Bathroom Fittings", "Plumbing Services"}, sortedKeywordSet(set))
	assert.Empty(t, sortedKeywordSet(map[string]bool{}))
}

//go:build integration

package testutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Person is a generated rushee or member.
type Person struct {
	ID    string
	Name  string
	Email string
	Major string
	Year  string
}

// TestDataGenerator produces realistic people and event names.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a generator. Without a seed it uses the clock.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// Seed reports the seed so a failing run can be reproduced.
func (g *TestDataGenerator) Seed() uint64 { return g.seed }

// GeneratePeople returns count people with unique ids and emails.
func (g *TestDataGenerator) GeneratePeople(count int) []Person {
	years := []string{"Freshman", "Sophomore", "Junior", "Senior"}
	people := make([]Person, count)
	for i := range people {
		first, last := g.faker.FirstName(), g.faker.LastName()
		people[i] = Person{
			ID:    fmt.Sprintf("p-%d-%s", i+1, g.faker.Numerify("####")),
			Name:  first + " " + last,
			Email: strings.ToLower(fmt.Sprintf("%s.%s%d@%s", first, last, i, g.faker.DomainName())),
			Major: g.faker.RandomString([]string{"Computer Science", "Economics", "Biology", "Finance", "History"}),
			Year:  years[g.faker.Number(0, len(years)-1)],
		}
	}
	return people
}

// EventName returns a plausible event title.
func (g *TestDataGenerator) EventName() string {
	return fmt.Sprintf("%s %s", g.faker.BuzzWord(), g.faker.RandomString([]string{"Mixer", "Workshop", "Panel", "Social"}))
}

// Code returns a short check-in code.
func (g *TestDataGenerator) Code() string {
	return g.faker.LetterN(6)
}

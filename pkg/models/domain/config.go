package domain

import "fmt"

type ProfileSource string

const (
	ProfileSourceFile    ProfileSource = "file"
	ProfileSourceDefault ProfileSource = "default"
)

// BackendProfile names a reporting backend the views can talk to.
type BackendProfile struct {
	Name     string
	Host     string
	Language string
	Source   ProfileSource
}

func (p BackendProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Source, p.Name)
}

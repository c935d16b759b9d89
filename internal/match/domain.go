package match

import (
	"fmt"
	"sort"
)

// Team is one of the franchises the classifier knows about.
type Team string

const (
	SunrisersHyderabad        Team = "Sunrisers Hyderabad"
	MumbaiIndians             Team = "Mumbai Indians"
	RoyalChallengersBangalore Team = "Royal Challengers Bangalore"
	KolkataKnightRiders       Team = "Kolkata Knight Riders"
	KingsXIPunjab             Team = "Kings XI Punjab"
	ChennaiSuperKings         Team = "Chennai Super Kings"
	RajasthanRoyals           Team = "Rajasthan Royals"
	DelhiCapitals             Team = "Delhi Capitals"
)

var teams = []Team{
	SunrisersHyderabad,
	MumbaiIndians,
	RoyalChallengersBangalore,
	KolkataKnightRiders,
	KingsXIPunjab,
	ChennaiSuperKings,
	RajasthanRoyals,
	DelhiCapitals,
}

// City is a host city seen in the training data. Bangalore and Bengaluru
// are distinct values there and stay distinct here.
type City string

var cities = []City{
	"Hyderabad", "Bangalore", "Mumbai", "Indore", "Kolkata", "Delhi",
	"Chandigarh", "Jaipur", "Chennai", "Cape Town", "Port Elizabeth",
	"Durban", "Centurion", "East London", "Johannesburg", "Kimberley",
	"Bloemfontein", "Ahmedabad", "Cuttack", "Nagpur", "Dharamsala",
	"Visakhapatnam", "Pune", "Raipur", "Ranchi", "Abu Dhabi",
	"Sharjah", "Mohali", "Bengaluru",
}

var (
	teamSet = make(map[Team]struct{}, len(teams))
	citySet = make(map[City]struct{}, len(cities))
)

func init() {
	for _, t := range teams {
		teamSet[t] = struct{}{}
	}
	for _, c := range cities {
		citySet[c] = struct{}{}
	}
}

// Teams returns the selectable teams in alphabetical order.
func Teams() []Team {
	out := append([]Team(nil), teams...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Opponents returns the teams that may bowl against batting, sorted.
func Opponents(batting Team) []Team {
	out := make([]Team, 0, len(teams)-1)
	for _, t := range Teams() {
		if t != batting {
			out = append(out, t)
		}
	}
	return out
}

// Cities returns the selectable host cities in alphabetical order.
func Cities() []City {
	out := append([]City(nil), cities...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t Team) Known() bool {
	_, ok := teamSet[t]
	return ok
}

func (c City) Known() bool {
	_, ok := citySet[c]
	return ok
}

func ParseTeam(s string) (Team, error) {
	t := Team(s)
	if !t.Known() {
		return "", fmt.Errorf("unknown team %q", s)
	}
	return t, nil
}

func ParseCity(s string) (City, error) {
	c := City(s)
	if !c.Known() {
		return "", fmt.Errorf("unknown city %q", s)
	}
	return c, nil
}

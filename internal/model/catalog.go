package model

import "time"

// ShowKind separates series from anime; both share the season/episode layout
type ShowKind string

const (
	ShowSeries ShowKind = "series"
	ShowAnime  ShowKind = "anime"
)

// Movie is a single playable title
type Movie struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Title       string `json:"title" bson:"title"`
	ImageURL    string `json:"imageUrl" bson:"imageUrl"`
	VideoURL    string `json:"videoUrl" bson:"videoUrl"`
	Description string `json:"description" bson:"description"`
	Year        string `json:"year,omitempty" bson:"year,omitempty"`
	Rating      string `json:"rating,omitempty" bson:"rating,omitempty"`
	Genre       string `json:"genre,omitempty" bson:"genre,omitempty"`
}

// Show is a series or anime made of seasons
type Show struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	Kind        ShowKind `json:"kind" bson:"kind"`
	Title       string   `json:"title" bson:"title"`
	ImageURL    string   `json:"imageUrl" bson:"imageUrl"`
	Description string   `json:"description" bson:"description"`
	Year        string   `json:"year,omitempty" bson:"year,omitempty"`
	Rating      string   `json:"rating,omitempty" bson:"rating,omitempty"`
	Genre       string   `json:"genre,omitempty" bson:"genre,omitempty"`
	Seasons     []Season `json:"seasons" bson:"seasons"`
}

type Season struct {
	ID       string    `json:"id" bson:"id"`
	Number   int       `json:"number" bson:"number"`
	Episodes []Episode `json:"episodes" bson:"episodes"`
}

type Episode struct {
	ID          string `json:"id" bson:"id"`
	Number      int    `json:"number" bson:"number"`
	Title       string `json:"title" bson:"title"`
	VideoURL    string `json:"videoUrl" bson:"videoUrl"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
}

// LiveChannel is a live TV entry pointing at an external stream
type LiveChannel struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	StreamURL   string `json:"videoUrl" bson:"streamUrl"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// BackgroundImage is shown behind the login form
type BackgroundImage struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	URL    string `json:"url" bson:"url"`
	Alt    string `json:"alt" bson:"alt"`
	Order  int    `json:"order" bson:"order"`
	Active bool   `json:"active" bson:"active"`
}

// WelcomeMessage is the admin-editable banner shown to subscribers
type WelcomeMessage struct {
	Message   string    `json:"message" bson:"message"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CatalogFilter narrows a listing by substring query and exact genre/category
type CatalogFilter struct {
	Query string
	Genre string
}

// Stats summarizes catalog and PIN counts for the admin console
type Stats struct {
	Movies       int64 `json:"movies"`
	Series       int64 `json:"series"`
	Anime        int64 `json:"anime"`
	LiveChannels int64 `json:"liveChannels"`
	Pins         int64 `json:"pins"`
	ActivePins   int64 `json:"activePins"`
}

package types

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Subtitle is the subtitle switch of a template.
type Subtitle struct {
	Open uint8  `json:"open"`
	Lan  string `json:"lan"`
}

// VideoInfo describes one part attached to a template.
type VideoInfo struct {
	ID             string `json:"id"`
	Cid            uint64 `json:"cid"`
	Title          string `json:"title"`
	Filename       string `json:"filename"`
	Desc           string `json:"desc"`
	Path           string `json:"path"`
	FinishedAt     uint64 `json:"finished_at"`
	EncodingStatus int64  `json:"encoding_status"`
	StatusDesc     string `json:"status_desc"`
	GroupKey       string `json:"group_key"`
	GroupRole      string `json:"group_role"`
}

// TemplateConfig is one reusable upload profile.
type TemplateConfig struct {
	Copyright        uint8       `json:"copyright"` // 1: original, 2: repost
	Source           string      `json:"source"`
	Tid              uint32      `json:"tid"`
	Cover            string      `json:"cover"`
	Title            string      `json:"title"`
	TitlePrefix      string      `json:"title_prefix"`
	Desc             string      `json:"desc"`
	DescV2           *string     `json:"desc_v2,omitempty"`
	Dynamic          string      `json:"dynamic"`
	Subtitle         Subtitle    `json:"subtitle"`
	Tag              string      `json:"tag"` // comma separated
	Videos           []VideoInfo `json:"videos"`
	Dtime            *uint32     `json:"dtime,omitempty"` // scheduled publish, unix seconds
	OpenSubtitle     bool        `json:"open_subtitle"`
	Interactive      uint8       `json:"interactive"`
	MissionID        *uint32     `json:"mission_id,omitempty"`
	TopicID          *uint32     `json:"topic_id,omitempty"`
	SeasonID         *uint64     `json:"season_id,omitempty"`
	SectionID        *uint64     `json:"section_id,omitempty"`
	Dolby            uint8       `json:"dolby"`
	LosslessMusic    uint8       `json:"lossless_music"`
	NoReprint        uint8       `json:"no_reprint"`
	OpenElec         uint8       `json:"open_elec"`
	Aid              *uint64     `json:"aid,omitempty"`
	UpSelectionReply uint8       `json:"up_selection_reply"`
	UpCloseReply     uint8       `json:"up_close_reply"`
	UpCloseDanmu     uint8       `json:"up_close_danmu"`
	AtomicInt        uint32      `json:"atomic_int"`
	IsOnlySelf       uint8       `json:"is_only_self"`
	Watermark        uint8       `json:"watermark"`
}

// DefaultTemplate returns the record used when a template is created without a seed.
func DefaultTemplate() TemplateConfig {
	return TemplateConfig{
		Copyright: 1,
		Videos:    []VideoInfo{},
	}
}

// Clone returns a copy sharing no pointers or slices with t.
func (t TemplateConfig) Clone() TemplateConfig {
	cp := t
	cp.DescV2 = cloneStringPtr(t.DescV2)
	cp.Dtime = cloneUint32Ptr(t.Dtime)
	cp.MissionID = cloneUint32Ptr(t.MissionID)
	cp.TopicID = cloneUint32Ptr(t.TopicID)
	cp.SeasonID = cloneUint64Ptr(t.SeasonID)
	cp.SectionID = cloneUint64Ptr(t.SectionID)
	cp.Aid = cloneUint64Ptr(t.Aid)
	if t.Videos != nil {
		cp.Videos = slices.Clone(t.Videos)
	}
	return cp
}

// AsDraft returns a copy detached from any published archive.
func (t TemplateConfig) AsDraft() TemplateConfig {
	cp := t.Clone()
	cp.Aid = nil
	return cp
}

// Equal reports whether both templates hold the same values. A nil and an
// empty video list compare equal.
func (t TemplateConfig) Equal(o TemplateConfig) bool {
	if len(t.Videos) == 0 {
		t.Videos = nil
	}
	if len(o.Videos) == 0 {
		o.Videos = nil
	}
	return reflect.DeepEqual(t, o)
}

// FieldChange is one differing field between two template versions.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// DiffTemplates lists the json fields whose values differ between old and next.
// Videos are reported per entry as added or removed.
func DiffTemplates(old, next TemplateConfig) []FieldChange {
	var changes []FieldChange
	ov := reflect.ValueOf(old)
	nv := reflect.ValueOf(next)
	rt := ov.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Name == "Videos" {
			continue
		}
		a := ov.Field(i).Interface()
		b := nv.Field(i).Interface()
		if reflect.DeepEqual(a, b) {
			continue
		}
		changes = append(changes, FieldChange{Field: jsonName(f), Old: display(a), New: display(b)})
	}
	for _, v := range next.Videos {
		if !slices.Contains(old.Videos, v) {
			changes = append(changes, FieldChange{Field: "videos", New: v.Filename})
		}
	}
	for _, v := range old.Videos {
		if !slices.Contains(next.Videos, v) {
			changes = append(changes, FieldChange{Field: "videos", Old: v.Filename})
		}
	}
	return changes
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func display(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "<nil>"
		}
		return fmt.Sprint(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

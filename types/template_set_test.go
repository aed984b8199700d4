package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestTemplateSetKeepsOrderThroughJSON(t *testing.T) {
	var s TemplateSet
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tpl := DefaultTemplate()
		tpl.Title = name
		s.Set(name, tpl)
	}
	// replacing keeps the slot
	replaced := DefaultTemplate()
	replaced.Title = "alpha v2"
	s.Set("alpha", replaced)

	data, err := sonic.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Index(string(data), `"zeta"`) > strings.Index(string(data), `"alpha"`) {
		t.Errorf("keys out of order: %s", data)
	}

	var back TemplateSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	got := back.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if tpl, _ := back.Get("alpha"); tpl.Title != "alpha v2" {
		t.Errorf("expected replaced value, got %q", tpl.Title)
	}
	if !back.Equal(&s) {
		t.Error("decoded set differs from source")
	}
}

func TestTemplateSetDecodeDefaults(t *testing.T) {
	var s TemplateSet
	if err := json.Unmarshal([]byte(`{"bare":{"title":"x"}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tpl, ok := s.Get("bare")
	if !ok {
		t.Fatal("bare template missing")
	}
	if tpl.Videos == nil || tpl.Aid != nil || tpl.Title != "x" {
		t.Errorf("unexpected decoded template %+v", tpl)
	}

	var empty TemplateSet
	if err := json.Unmarshal([]byte(`null`), &empty); err != nil || empty.Len() != 0 {
		t.Errorf("null should decode to an empty set, got %d entries (%v)", empty.Len(), err)
	}
	if err := json.Unmarshal([]byte(`[]`), &empty); err == nil {
		t.Error("expected error for non-object templates")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	aid := uint64(42)
	line := "bda2"
	root := DefaultConfigRoot()
	uc := NewUserConfig(1, "a", json.RawMessage(`{"k":1}`), nil)
	uc.Line = &line
	tpl := DefaultTemplate()
	tpl.Aid = &aid
	tpl.Videos = []VideoInfo{{Filename: "a.mp4"}}
	uc.Templates.Set("t", tpl)
	root.Config[1] = uc

	cp := root.Clone()
	if !cp.Equal(root) {
		t.Fatal("clone should equal source")
	}

	*cp.Config[1].Line = "other"
	cp.Config[1].User.Cookie[2] = 'x'
	got, _ := cp.Config[1].Templates.Get("t")
	*got.Aid = 7
	got.Videos[0].Filename = "b.mp4"
	cp.Config[1].Templates.Set("t", got)
	cp.Config[1].Templates.Set("extra", DefaultTemplate())
	cp.MaxCurr = 9

	orig, _ := root.Config[1].Templates.Get("t")
	if *root.Config[1].Line != "bda2" || string(root.Config[1].User.Cookie) != `{"k":1}` {
		t.Error("clone shares user fields with the source")
	}
	if *orig.Aid != 42 || orig.Videos[0].Filename != "a.mp4" || root.Config[1].Templates.Has("extra") {
		t.Error("clone shares templates with the source")
	}
	if root.MaxCurr != 1 || cp.Equal(root) {
		t.Error("clone shares global settings with the source")
	}
}

func TestDiffTemplates(t *testing.T) {
	old := DefaultTemplate()
	next := old.Clone()
	next.Title = "new"
	dtime := uint32(100)
	next.Dtime = &dtime
	next.Videos = []VideoInfo{{Filename: "p1.mp4"}}

	changes := DiffTemplates(old, next)
	fields := map[string]FieldChange{}
	for _, ch := range changes {
		fields[ch.Field] = ch
	}
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %+v", changes)
	}
	if ch := fields["title"]; ch.Old != "" || ch.New != "new" {
		t.Errorf("unexpected title change %+v", ch)
	}
	if ch := fields["dtime"]; ch.Old != "<nil>" || ch.New != "100" {
		t.Errorf("unexpected dtime change %+v", ch)
	}
	if ch := fields["videos"]; ch.New != "p1.mp4" {
		t.Errorf("unexpected videos change %+v", ch)
	}
	if len(DiffTemplates(old, old.Clone())) != 0 {
		t.Error("identical templates should not differ")
	}
}

func TestUserSettingsPatch(t *testing.T) {
	proxy := "http://proxy"
	uc := NewUserConfig(1, "a", nil, &proxy)
	uc.Watermark = 1

	limit := uint32(3)
	UserSettingsPatch{Limit: &limit}.ApplyTo(uc)
	if uc.Limit != 3 || uc.Proxy == nil || *uc.Proxy != proxy || uc.Watermark != 1 {
		t.Errorf("patch touched unrelated fields: %+v", uc)
	}

	empty := ""
	line := "qn"
	UserSettingsPatch{Proxy: &empty, Line: &line}.ApplyTo(uc)
	if uc.Proxy != nil || uc.Line == nil || *uc.Line != "qn" {
		t.Errorf("unexpected line/proxy %v %v", uc.Line, uc.Proxy)
	}
	if !(UserSettingsPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
}

func TestConfigRootDecodeNormalizes(t *testing.T) {
	root := DefaultConfigRoot()
	data := `{"max_curr":2,"log_level":"","config":{"7":{"user":{"uid":0,"name":"n"},"limit":1,"watermark":0,"auto_edit":0,"templates":{}},"8":null}}`
	if err := sonic.Unmarshal([]byte(data), root); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	root.Normalize()
	if root.LogLevel != DefaultLogLevel || root.MaxCurr != 2 {
		t.Errorf("unexpected globals %+v", root.GlobalSettings)
	}
	if uc := root.User(7); uc == nil || uc.User.UID != 7 {
		t.Errorf("expected uid taken from key, got %+v", uc)
	}
	if _, ok := root.Config[8]; ok {
		t.Error("null user block should be dropped")
	}
}

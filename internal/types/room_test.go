package types

import "testing"

func TestSyncAliasesLegacyNamePopulatesRenamed(t *testing.T) {
	o := &RoomObject{Name: "Desk Lamp"}
	o.SyncAliases()
	if o.ObjectName != "Desk Lamp" {
		t.Fatalf("object_name: want=%q got=%q", "Desk Lamp", o.ObjectName)
	}
	if o.Name != "Desk Lamp" {
		t.Fatalf("name: want=%q got=%q", "Desk Lamp", o.Name)
	}
}

func TestSyncAliasesRenamedNameWinsOverLegacy(t *testing.T) {
	o := &RoomObject{Name: "old", ObjectName: "Bookshelf"}
	o.SyncAliases()
	if o.Name != "Bookshelf" || o.ObjectName != "Bookshelf" {
		t.Fatalf("want both %q, got name=%q object_name=%q", "Bookshelf", o.Name, o.ObjectName)
	}
}

func TestSyncAliasesDescriptionFansOutToAllThree(t *testing.T) {
	cases := []struct {
		label string
		obj   RoomObject
		want  string
	}{
		{"legacy", RoomObject{Description: "a wooden desk"}, "a wooden desk"},
		{"renamed", RoomObject{ObjectDescription: "a wooden desk"}, "a wooden desk"},
		{"short", RoomObject{ShortDescription: "a wooden desk"}, "a wooden desk"},
		{"renamed wins", RoomObject{Description: "old", ObjectDescription: "new"}, "new"},
	}
	for _, tc := range cases {
		o := tc.obj
		o.SyncAliases()
		if o.Description != tc.want || o.ObjectDescription != tc.want || o.ShortDescription != tc.want {
			t.Fatalf("%s: want all %q, got desc=%q object_desc=%q short=%q",
				tc.label, tc.want, o.Description, o.ObjectDescription, o.ShortDescription)
		}
	}
}

func TestNormalizeObjectUpdatesWritesWholeAliasGroup(t *testing.T) {
	updates := NormalizeObjectUpdates(map[string]any{"name": "Window"})
	if updates["object_name"] != "Window" {
		t.Fatalf("object_name not synced: got=%v", updates["object_name"])
	}

	updates = NormalizeObjectUpdates(map[string]any{"object_description": "tall glass pane"})
	for _, k := range []string{"description", "object_description", "short_description"} {
		if updates[k] != "tall glass pane" {
			t.Fatalf("%s not synced: got=%v", k, updates[k])
		}
	}
}

func TestNormalizeObjectUpdatesLastAliasWinsOnConflict(t *testing.T) {
	updates := NormalizeObjectUpdates(map[string]any{
		"description":        "legacy",
		"short_description":  "short",
		"object_description": "renamed",
	})
	// The renamed column wins on conflict, same as SyncAliases.
	if updates["description"] != "renamed" {
		t.Fatalf("conflict resolution: want=%q got=%v", "renamed", updates["description"])
	}
}

func TestNormalizeObjectUpdatesLeavesUnrelatedKeys(t *testing.T) {
	updates := NormalizeObjectUpdates(map[string]any{"image_url": "https://x/y.jpg"})
	if _, ok := updates["name"]; ok {
		t.Fatalf("name should not appear for unrelated update")
	}
	if updates["image_url"] != "https://x/y.jpg" {
		t.Fatalf("image_url mangled: got=%v", updates["image_url"])
	}
}

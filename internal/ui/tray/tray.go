package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
	"pomodoro/internal/ui/display"
)

// Callbacks defines tray action handlers. OnInteract runs before every other
// handler.
type Callbacks struct {
	OnInteract func()
	OnShow     func()
	OnToggle   func()
	OnReset    func()
	OnMute     func()
	OnSelect   func(index int)
	OnCustom   func()
	OnQuit     func()
}

// Manager handles system tray state.
type Manager struct {
	app           desktop.App
	callbacks     Callbacks
	catalog       model.Catalog
	assets        model.AssetSet
	statusItem    *fyne.MenuItem
	playingItem   *fyne.MenuItem
	playing       bool
	toggleItem    *fyne.MenuItem
	resetItem     *fyne.MenuItem
	muteItem      *fyne.MenuItem
	templatesItem *fyne.MenuItem
	templateItems []*fyne.MenuItem
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, catalog model.Catalog, assets model.AssetSet, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		catalog:   catalog,
		assets:    assets,
	}

	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true
	manager.playingItem = fyne.NewMenuItem("", nil)
	manager.playingItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", manager.interact(callbacks.OnToggle))
	manager.resetItem = fyne.NewMenuItem("Reset", manager.interact(callbacks.OnReset))
	manager.resetItem.Disabled = true
	manager.muteItem = fyne.NewMenuItem("Mute music", manager.interact(callbacks.OnMute))

	for index, template := range catalog {
		item := fyne.NewMenuItem(fmt.Sprintf("%s (%d/%d)", template.Name, template.FocusMinutes, template.BreakMinutes), manager.interact(func() {
			if manager.callbacks.OnSelect != nil {
				manager.callbacks.OnSelect(index)
			}
		}))
		manager.templateItems = append(manager.templateItems, item)
	}
	custom := fyne.NewMenuItem("Custom...", manager.interact(callbacks.OnCustom))
	children := append(append([]*fyne.MenuItem{}, manager.templateItems...), fyne.NewMenuItemSeparator(), custom)
	manager.templatesItem = fyne.NewMenuItem("Templates", nil)
	manager.templatesItem.ChildMenu = fyne.NewMenu("", children...)

	manager.refreshMenu()
	return manager
}

// Update reflects snapshot in the menu. It must run on the fyne goroutine.
func (manager *Manager) Update(snapshot cycle.Snapshot) {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", display.Status(snapshot))
	manager.toggleItem.Label = display.ToggleLabel(snapshot)
	manager.toggleItem.Disabled = snapshot.ActiveTemplate == nil
	manager.resetItem.Disabled = snapshot.CycleState == cycle.CycleIdle
	manager.muteItem.Label = display.MuteLabel(snapshot)
	playing, visible := display.NowPlaying(snapshot, manager.assets)
	manager.playing = visible
	manager.playingItem.Label = playing.Line()

	activeID := ""
	if snapshot.ActiveTemplate != nil {
		activeID = snapshot.ActiveTemplate.ID
	}
	for index, item := range manager.templateItems {
		item.Checked = manager.catalog[index].ID == activeID
	}
	manager.refreshMenu()
}

func (manager *Manager) interact(handler func()) func() {
	return func() {
		if manager.callbacks.OnInteract != nil {
			manager.callbacks.OnInteract()
		}
		if handler != nil {
			handler()
		}
	}
}

func (manager *Manager) menu() *fyne.Menu {
	items := []*fyne.MenuItem{manager.statusItem}
	if manager.playing {
		items = append(items, manager.playingItem)
	}
	items = append(items,
		fyne.NewMenuItem("Show timer", manager.interact(manager.callbacks.OnShow)),
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.resetItem,
		manager.muteItem,
		manager.templatesItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)
	return fyne.NewMenu("Pomodoro", items...)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu())
	}
}

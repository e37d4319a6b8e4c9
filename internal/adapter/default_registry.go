package adapter

// NewDefaultRegistry builds the Registry wiring every manager the engine
// knows about, one adapter per row of the manager table.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		NewMise(),
		NewAsdf(),
		NewRustup(),
		NewNpm(),
		NewPnpm(),
		NewYarn(),
		NewPip(),
		NewPipx(),
		NewCargo(),
		NewGem(),
		NewGo(),
		NewComposer(),
		NewHomebrew(),
		NewApt(),
		NewDnf(),
		NewPacman(),
		NewFlatpak(),
		NewSnap(),
		NewDocker(),
		NewFwupd(),
	)
}

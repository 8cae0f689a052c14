package disasm

// NameProvider resolves symbolic names for indices in the five reference namespaces. A
// missing name is reported with ok == false and is not an error.
type NameProvider interface {
	Global(index uint32) (string, bool)
	Function(index uint32) (string, bool)
	Type(index uint32) (string, bool)
	Field(typeIndex, index uint32) (string, bool)
	Local(functionIndex, index uint32) (string, bool)
}

// ModuleNamer is implemented by NameProviders that also know the module's name.
type ModuleNamer interface {
	ModuleName() (string, bool)
}

// NoNames resolves no names.
var NoNames NameProvider = noNames{}

type noNames struct{}

func (noNames) Global(uint32) (string, bool)        { return "", false }
func (noNames) Function(uint32) (string, bool)      { return "", false }
func (noNames) Type(uint32) (string, bool)          { return "", false }
func (noNames) Field(uint32, uint32) (string, bool) { return "", false }
func (noNames) Local(uint32, uint32) (string, bool) { return "", false }

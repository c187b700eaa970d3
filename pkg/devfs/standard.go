package devfs

// Major and minor numbers of the memory devices, as assigned on Linux.
const (
	MemMajor     = 1
	NullMinor    = 3
	ZeroMinor    = 5
	RandomMinor  = 8
	URandomMinor = 9
)

// NewStandard returns a device filesystem populated with the usual memory
// devices, each attached to the root and registered under its Linux number,
// plus the empty "pts" and "shm" directories.
func NewStandard() *DeviceFileSystem {
	d := New()

	d.Mkdir("pts")
	d.Mkdir("shm")

	null := &NullDev{}
	d.Add("null", null)
	d.RegisterDevice(MemMajor, NullMinor, null)

	zero := &ZeroDev{}
	d.Add("zero", zero)
	d.RegisterDevice(MemMajor, ZeroMinor, zero)

	// random and urandom share one generator.
	random := &URandomDev{}
	d.Add("random", random)
	d.RegisterDevice(MemMajor, RandomMinor, random)

	urandom := &URandomDev{}
	d.Add("urandom", urandom)
	d.RegisterDevice(MemMajor, URandomMinor, urandom)

	return d
}

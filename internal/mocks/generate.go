package mocks

//go:generate mockery --name SeriesStore --srcpkg github.com/tempo-lab/project-tempo/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name InstanceStore --srcpkg github.com/tempo-lab/project-tempo/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
